package node

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName = "vectorlog.v1.CausalLog"

	appendMethod = "/" + serviceName + "/Append"
	listMethod   = "/" + serviceName + "/List"
	syncMethod   = "/" + serviceName + "/Sync"
)

// CausalLogServer is the server API for the causal log service.
//
// Messages are protobuf well-known types: requests and responses carry the
// codec's JSON envelopes inside a Struct.
type CausalLogServer interface {
	// Append stamps and appends {participant, content, request_id}.
	// Returns the entry envelope.
	Append(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// List returns {entries: [...]} in append order.
	List(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// Sync is reserved for log-to-log merging and is not implemented.
	Sync(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCausalLogServer registers srv on a gRPC server.
func RegisterCausalLogServer(s grpc.ServiceRegistrar, srv CausalLogServer) {
	s.RegisterService(&causalLogServiceDesc, srv)
}

var causalLogServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CausalLogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Append",
			Handler:    unaryHandler(appendMethod, newStruct, CausalLogServer.Append),
		},
		{
			MethodName: "List",
			Handler:    unaryHandler(listMethod, newEmpty, CausalLogServer.List),
		},
		{
			MethodName: "Sync",
			Handler:    unaryHandler(syncMethod, newStruct, CausalLogServer.Sync),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vectorlog/v1/causal_log.proto",
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty    { return &emptypb.Empty{} }

// unaryHandler adapts a typed server method to a grpc method handler.
func unaryHandler[Req proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(CausalLogServer, context.Context, Req) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CausalLogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CausalLogServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
