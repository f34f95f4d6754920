package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "inventory.v1.InventoryService"

type InventoryServiceServer interface {
	Set(context.Context, *SetRequest) (*Empty, error)
	SetNX(context.Context, *SetRequest) (*Empty, error)
	Get(context.Context, *KeyRequest) (*InventoryReply, error)
	Deduct(context.Context, *DeductRequest) (*CurrentReply, error)
	Increase(context.Context, *IncreaseRequest) (*InventoryReply, error)
	Return(context.Context, *ReturnRequest) (*CurrentReply, error)
	Delete(context.Context, *KeyRequest) (*InventoryReply, error)
	MemoryUsage(context.Context, *KeyRequest) (*MemoryUsageReply, error)
}

// UnimplementedInventoryServiceServer can be embedded for forward compatibility.
type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) Set(context.Context, *SetRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Set not implemented")
}
func (UnimplementedInventoryServiceServer) SetNX(context.Context, *SetRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetNX not implemented")
}
func (UnimplementedInventoryServiceServer) Get(context.Context, *KeyRequest) (*InventoryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedInventoryServiceServer) Deduct(context.Context, *DeductRequest) (*CurrentReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Deduct not implemented")
}
func (UnimplementedInventoryServiceServer) Increase(context.Context, *IncreaseRequest) (*InventoryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Increase not implemented")
}
func (UnimplementedInventoryServiceServer) Return(context.Context, *ReturnRequest) (*CurrentReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Return not implemented")
}
func (UnimplementedInventoryServiceServer) Delete(context.Context, *KeyRequest) (*InventoryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedInventoryServiceServer) MemoryUsage(context.Context, *KeyRequest) (*MemoryUsageReply, error) {
	return nil, status.Error(codes.Unimplemented, "method MemoryUsage not implemented")
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req, Resp any](method string, call func(InventoryServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Set", Handler: unary("Set", InventoryServiceServer.Set)},
		{MethodName: "SetNX", Handler: unary("SetNX", InventoryServiceServer.SetNX)},
		{MethodName: "Get", Handler: unary("Get", InventoryServiceServer.Get)},
		{MethodName: "Deduct", Handler: unary("Deduct", InventoryServiceServer.Deduct)},
		{MethodName: "Increase", Handler: unary("Increase", InventoryServiceServer.Increase)},
		{MethodName: "Return", Handler: unary("Return", InventoryServiceServer.Return)},
		{MethodName: "Delete", Handler: unary("Delete", InventoryServiceServer.Delete)},
		{MethodName: "MemoryUsage", Handler: unary("MemoryUsage", InventoryServiceServer.MemoryUsage)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

type InventoryServiceClient interface {
	Set(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*Empty, error)
	SetNX(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*Empty, error)
	Get(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*InventoryReply, error)
	Deduct(ctx context.Context, in *DeductRequest, opts ...grpc.CallOption) (*CurrentReply, error)
	Increase(ctx context.Context, in *IncreaseRequest, opts ...grpc.CallOption) (*InventoryReply, error)
	Return(ctx context.Context, in *ReturnRequest, opts ...grpc.CallOption) (*CurrentReply, error)
	Delete(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*InventoryReply, error)
	MemoryUsage(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*MemoryUsageReply, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inventoryServiceClient) Set(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Set", in, opts)
}

func (c *inventoryServiceClient) SetNX(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "SetNX", in, opts)
}

func (c *inventoryServiceClient) Get(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*InventoryReply, error) {
	return invoke[InventoryReply](ctx, c.cc, "Get", in, opts)
}

func (c *inventoryServiceClient) Deduct(ctx context.Context, in *DeductRequest, opts ...grpc.CallOption) (*CurrentReply, error) {
	return invoke[CurrentReply](ctx, c.cc, "Deduct", in, opts)
}

func (c *inventoryServiceClient) Increase(ctx context.Context, in *IncreaseRequest, opts ...grpc.CallOption) (*InventoryReply, error) {
	return invoke[InventoryReply](ctx, c.cc, "Increase", in, opts)
}

func (c *inventoryServiceClient) Return(ctx context.Context, in *ReturnRequest, opts ...grpc.CallOption) (*CurrentReply, error) {
	return invoke[CurrentReply](ctx, c.cc, "Return", in, opts)
}

func (c *inventoryServiceClient) Delete(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*InventoryReply, error) {
	return invoke[InventoryReply](ctx, c.cc, "Delete", in, opts)
}

func (c *inventoryServiceClient) MemoryUsage(ctx context.Context, in *KeyRequest, opts ...grpc.CallOption) (*MemoryUsageReply, error) {
	return invoke[MemoryUsageReply](ctx, c.cc, "MemoryUsage", in, opts)
}
