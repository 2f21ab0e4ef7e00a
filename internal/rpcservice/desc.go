package rpcservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "ghostkey.v1.GhostService"

// GhostServer is the server API for GhostService. Messages are protobuf
// well-known types, so no generated code is needed on either side.
type GhostServer interface {
	InsertImmediate(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	InsertDeferred(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Accept(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Reject(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	ReadContext(context.Context, *wrapperspb.UInt32Value) (*wrapperspb.StringValue, error)
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newUInt32() *wrapperspb.UInt32Value { return new(wrapperspb.UInt32Value) }
func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }

// ServiceDesc describes GhostService for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GhostServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("InsertImmediate", newString, GhostServer.InsertImmediate),
		unary("InsertDeferred", newString, GhostServer.InsertDeferred),
		unary("Accept", newEmpty, GhostServer.Accept),
		unary("Reject", newEmpty, GhostServer.Reject),
		unary("ReadContext", newUInt32, GhostServer.ReadContext),
		unary("Status", newEmpty, GhostServer.Status),
	},
	Metadata: "ghostkey/v1/ghost.proto",
}

// Register adds srv to s.
func Register(s grpc.ServiceRegistrar, srv GhostServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req, Resp proto.Message](
	name string,
	newReq func() Req,
	call func(GhostServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				out, err := call(srv.(GhostServer), ctx, req.(Req))
				if err != nil {
					return nil, err
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}
