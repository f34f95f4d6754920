package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-store/internal/adapter/storage"
	"github.com/rl1809/inventory-store/internal/core/service"
)

const itemID = "stress-item"

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	initialStock := flag.Int("stock", 20, "initial stock")
	totalRequests := flag.Int("requests", 50, "concurrent deductions")
	returns := flag.Int("returns", 5, "concurrent returns issued alongside the deductions")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: *redisAddr, PoolSize: 100})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	keyspace := storage.NewRedisAdapter(rdb, "stress:")
	inventoryService := service.NewInventoryService(keyspace, nil, logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel)))

	if err := inventoryService.Set(ctx, itemID, uint64(*initialStock)); err != nil {
		logger.Fatal("failed to set stock", zap.Error(err))
	}

	// Counters
	var successCount, shortageCount, returnedCount, overReturnCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := inventoryService.Deduct(ctx, itemID, 1)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrShortage):
				shortageCount.Add(1)
			default:
				logger.Error("deduct failed", zap.Error(err))
			}
		}()
	}
	for i := 0; i < *returns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := inventoryService.Return(ctx, itemID, 1)
			switch {
			case err == nil:
				returnedCount.Add(1)
			case errors.Is(err, service.ErrOverReturn):
				overReturnCount.Add(1)
			default:
				logger.Error("return failed", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	inv, _, err := inventoryService.Get(ctx, itemID)
	if err != nil {
		logger.Fatal("failed to read final stock", zap.Error(err))
	}

	// Results
	success := successCount.Load()
	returned := returnedCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Deductions:       %d ok / %d shortage\n", success, shortageCount.Load())
	fmt.Printf("Returns:          %d ok / %d over-return\n", returned, overReturnCount.Load())
	fmt.Printf("Final:            total=%d current=%d\n", inv.Total(), inv.Current())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	failed := false
	want := int64(*initialStock) - int64(success) + int64(returned)
	if int64(inv.Current()) != want {
		fmt.Printf("FAIL: expected current %d, got %d\n", want, inv.Current())
		failed = true
	}
	if inv.Current() > inv.Total() {
		fmt.Printf("FAIL: current %d exceeds total %d\n", inv.Current(), inv.Total())
		failed = true
	}
	if int(success) > *initialStock+int(returned) {
		fmt.Printf("FAIL: oversold: %d deductions against %d units\n", success, *initialStock+int(returned))
		failed = true
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("PASS: no oversell, no over-return, counters consistent")
}
