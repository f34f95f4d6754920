package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-store/internal/adapter/handler/rpc"
	"github.com/rl1809/inventory-store/internal/core/domain"
	"github.com/rl1809/inventory-store/internal/core/service"
)

type GRPCHandler struct {
	rpc.UnimplementedInventoryServiceServer
	inventoryService *service.InventoryService
}

func NewGRPCHandler(inventoryService *service.InventoryService) *GRPCHandler {
	return &GRPCHandler{inventoryService: inventoryService}
}

func (h *GRPCHandler) Set(ctx context.Context, req *rpc.SetRequest) (*rpc.Empty, error) {
	if req.Total == nil {
		return nil, missing("total")
	}
	if err := h.inventoryService.Set(ctx, req.Key, *req.Total); err != nil {
		return nil, grpcError(err)
	}
	return &rpc.Empty{}, nil
}

func (h *GRPCHandler) SetNX(ctx context.Context, req *rpc.SetRequest) (*rpc.Empty, error) {
	if req.Total == nil {
		return nil, missing("total")
	}
	if err := h.inventoryService.SetNX(ctx, req.Key, *req.Total); err != nil {
		return nil, grpcError(err)
	}
	return &rpc.Empty{}, nil
}

func (h *GRPCHandler) Get(ctx context.Context, req *rpc.KeyRequest) (*rpc.InventoryReply, error) {
	inv, found, err := h.inventoryService.Get(ctx, req.Key)
	if err != nil {
		return nil, grpcError(err)
	}
	return inventoryReply(inv, found), nil
}

func (h *GRPCHandler) Deduct(ctx context.Context, req *rpc.DeductRequest) (*rpc.CurrentReply, error) {
	count := uint64(service.DefaultDeduction)
	if req.Count != nil {
		count = *req.Count
	}
	current, found, err := h.inventoryService.Deduct(ctx, req.Key, count)
	if err != nil {
		return nil, grpcError(err)
	}
	return &rpc.CurrentReply{Found: found, Current: current}, nil
}

func (h *GRPCHandler) Increase(ctx context.Context, req *rpc.IncreaseRequest) (*rpc.InventoryReply, error) {
	if req.By == nil {
		return nil, missing("by")
	}
	inv, found, err := h.inventoryService.Increase(ctx, req.Key, *req.By)
	if err != nil {
		return nil, grpcError(err)
	}
	return inventoryReply(inv, found), nil
}

func (h *GRPCHandler) Return(ctx context.Context, req *rpc.ReturnRequest) (*rpc.CurrentReply, error) {
	if req.Amount == nil {
		return nil, missing("amount")
	}
	current, found, err := h.inventoryService.Return(ctx, req.Key, *req.Amount)
	if err != nil {
		return nil, grpcError(err)
	}
	return &rpc.CurrentReply{Found: found, Current: current}, nil
}

func (h *GRPCHandler) Delete(ctx context.Context, req *rpc.KeyRequest) (*rpc.InventoryReply, error) {
	inv, found, err := h.inventoryService.Delete(ctx, req.Key)
	if err != nil {
		return nil, grpcError(err)
	}
	return inventoryReply(inv, found), nil
}

func (h *GRPCHandler) MemoryUsage(ctx context.Context, req *rpc.KeyRequest) (*rpc.MemoryUsageReply, error) {
	size, found, err := h.inventoryService.MemoryUsage(ctx, req.Key)
	if err != nil {
		return nil, grpcError(err)
	}
	return &rpc.MemoryUsageReply{Found: found, Bytes: int64(size)}, nil
}

func inventoryReply(inv domain.Inventory, found bool) *rpc.InventoryReply {
	if !found {
		return &rpc.InventoryReply{}
	}
	return &rpc.InventoryReply{Found: true, Total: inv.Total(), Current: inv.Current()}
}

func missing(field string) error {
	return status.Error(codes.InvalidArgument, "missing "+field)
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, service.ErrOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, service.ErrKeyTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrShortage),
		errors.Is(err, service.ErrOverReturn),
		errors.Is(err, service.ErrIncreaseOverflow):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
