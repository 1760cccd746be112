package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Full method names of skirmish.v1.CombatService.
const (
	CombatServiceName                         = "skirmish.v1.CombatService"
	CombatService_Join_FullMethodName         = "/skirmish.v1.CombatService/Join"
	CombatService_SubmitIntent_FullMethodName = "/skirmish.v1.CombatService/SubmitIntent"
	CombatService_Snapshot_FullMethodName     = "/skirmish.v1.CombatService/Snapshot"
	CombatService_AimAssist_FullMethodName    = "/skirmish.v1.CombatService/AimAssist"
	CombatService_Events_FullMethodName       = "/skirmish.v1.CombatService/Events"
)

// CombatServiceServer is the server API for skirmish.v1.CombatService.
//
// Requests and responses use protobuf well-known types: structured
// requests are structpb.Struct, snapshots and events are msgpack payloads
// carried in wrapperspb.BytesValue.
type CombatServiceServer interface {
	Join(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitIntent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	AimAssist(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Events(*structpb.Struct, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error
}

// RegisterCombatServiceServer registers srv on s.
func RegisterCombatServiceServer(s grpc.ServiceRegistrar, srv CombatServiceServer) {
	s.RegisterService(&CombatService_ServiceDesc, srv)
}

func _CombatService_Join_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CombatServiceServer).Join(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CombatService_Join_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CombatServiceServer).Join(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _CombatService_SubmitIntent_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CombatServiceServer).SubmitIntent(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CombatService_SubmitIntent_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CombatServiceServer).SubmitIntent(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _CombatService_Snapshot_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CombatServiceServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CombatService_Snapshot_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CombatServiceServer).Snapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CombatService_AimAssist_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CombatServiceServer).AimAssist(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CombatService_AimAssist_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CombatServiceServer).AimAssist(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _CombatService_Events_Handler(srv any, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CombatServiceServer).Events(m, &grpc.GenericServerStream[structpb.Struct, wrapperspb.BytesValue]{ServerStream: stream})
}

// CombatService_ServiceDesc is the grpc.ServiceDesc for skirmish.v1.CombatService.
var CombatService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CombatServiceName,
	HandlerType: (*CombatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Join", Handler: _CombatService_Join_Handler},
		{MethodName: "SubmitIntent", Handler: _CombatService_SubmitIntent_Handler},
		{MethodName: "Snapshot", Handler: _CombatService_Snapshot_Handler},
		{MethodName: "AimAssist", Handler: _CombatService_AimAssist_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Events", Handler: _CombatService_Events_Handler, ServerStreams: true},
	},
	Metadata: "skirmish/v1/combat.proto",
}

// CombatServiceClient is the client API for skirmish.v1.CombatService.
type CombatServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCombatServiceClient wraps cc.
func NewCombatServiceClient(cc grpc.ClientConnInterface) *CombatServiceClient {
	return &CombatServiceClient{cc: cc}
}

// Join spawns a player-controlled actor.
func (c *CombatServiceClient) Join(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CombatService_Join_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitIntent applies a player intent.
func (c *CombatServiceClient) SubmitIntent(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CombatService_SubmitIntent_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot fetches the msgpack-encoded world state.
func (c *CombatServiceClient) Snapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, CombatService_Snapshot_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AimAssist fetches the lead indicator of a player actor.
func (c *CombatServiceClient) AimAssist(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CombatService_AimAssist_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Events subscribes to the battle's event stream.
func (c *CombatServiceClient) Events(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.BytesValue], error) {
	stream, err := c.cc.NewStream(ctx, &CombatService_ServiceDesc.Streams[0], CombatService_Events_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, wrapperspb.BytesValue]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
