package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-store/internal/adapter/handler/rpc"
)

const nilReply = "(nil)"

type cli struct {
	addr    string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "invctl",
		Short:        "Inventory counter client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.addr, "addr", "localhost:50051", "server gRPC address")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 5*time.Second, "request timeout")

	root.AddCommand(
		c.command("set KEY TOTAL", "Create or reset an inventory", 2, 2, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error) {
			_, err := client.Set(ctx, &rpc.SetRequest{Key: args[0], Total: &nums[0]})
			return "OK", err
		}),
		c.command("setnx KEY TOTAL", "Create an inventory if absent", 2, 2, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error) {
			_, err := client.SetNX(ctx, &rpc.SetRequest{Key: args[0], Total: &nums[0]})
			return "OK", err
		}),
		c.command("get KEY", "Show total and current", 1, 1, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, _ []uint64) (string, error) {
			reply, err := client.Get(ctx, &rpc.KeyRequest{Key: args[0]})
			return formatInventory(reply), err
		}),
		c.command("deduct KEY [COUNT]", "Take COUNT (default 1) from current", 1, 2, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error) {
			req := &rpc.DeductRequest{Key: args[0]}
			if len(nums) > 0 {
				req.Count = &nums[0]
			}
			reply, err := client.Deduct(ctx, req)
			return formatCurrent(reply), err
		}),
		c.command("incr KEY BY", "Grow total and current", 2, 2, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error) {
			reply, err := client.Increase(ctx, &rpc.IncreaseRequest{Key: args[0], By: &nums[0]})
			return formatInventory(reply), err
		}),
		c.command("return KEY AMOUNT", "Put AMOUNT back", 2, 2, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error) {
			reply, err := client.Return(ctx, &rpc.ReturnRequest{Key: args[0], Amount: &nums[0]})
			return formatCurrent(reply), err
		}),
		c.command("del KEY", "Delete an inventory and show what it held", 1, 1, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, _ []uint64) (string, error) {
			reply, err := client.Delete(ctx, &rpc.KeyRequest{Key: args[0]})
			return formatInventory(reply), err
		}),
		c.command("mem KEY", "Show the resident size of an inventory", 1, 1, func(ctx context.Context, client rpc.InventoryServiceClient, args []string, _ []uint64) (string, error) {
			reply, err := client.MemoryUsage(ctx, &rpc.KeyRequest{Key: args[0]})
			if err != nil || !reply.Found {
				return nilReply, err
			}
			return strconv.FormatInt(reply.Bytes, 10), nil
		}),
	)

	return root
}

type action func(ctx context.Context, client rpc.InventoryServiceClient, args []string, nums []uint64) (string, error)

// command builds a subcommand taking a key followed by optional unsigned
// integers. Argument counts include the key.
func (c *cli) command(use, short string, minArgs, maxArgs int, run action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(minArgs, maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]uint64, 0, len(args)-1)
			for _, arg := range args[1:] {
				n, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q", arg)
				}
				nums = append(nums, n)
			}

			conn, err := grpc.NewClient(c.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			out, err := run(ctx, rpc.NewInventoryServiceClient(conn), args, nums)
			if err != nil {
				return fmt.Errorf("%s", status.Convert(err).Message())
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func formatInventory(reply *rpc.InventoryReply) string {
	if reply == nil || !reply.Found {
		return nilReply
	}
	return fmt.Sprintf("1) %d\n2) %d", reply.Total, reply.Current)
}

func formatCurrent(reply *rpc.CurrentReply) string {
	if reply == nil || !reply.Found {
		return nilReply
	}
	return strconv.FormatUint(uint64(reply.Current), 10)
}
