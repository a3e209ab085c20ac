package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "remark.v1.RemarkService"

const (
	methodAnnotateRoster  = "AnnotateRoster"
	methodGenerateRemarks = "GenerateRemarks"
	methodGetRun          = "GetRun"
	methodListRuns        = "ListRuns"
)

// RemarkServer is the server side of remark.v1.RemarkService. Requests and
// responses are google.protobuf.Struct documents.
type RemarkServer interface {
	AnnotateRoster(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateRemarks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(RemarkServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RemarkServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RemarkServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes remark.v1.RemarkService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RemarkServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodAnnotateRoster, Handler: unaryHandler(methodAnnotateRoster, RemarkServer.AnnotateRoster)},
		{MethodName: methodGenerateRemarks, Handler: unaryHandler(methodGenerateRemarks, RemarkServer.GenerateRemarks)},
		{MethodName: methodGetRun, Handler: unaryHandler(methodGetRun, RemarkServer.GetRun)},
		{MethodName: methodListRuns, Handler: unaryHandler(methodListRuns, RemarkServer.ListRuns)},
	},
	Streams: []grpc.StreamDesc{},
	// No .proto file descriptor is registered, so server reflection can list
	// the service but cannot describe its methods.
	Metadata: "",
}

// RegisterRemarkServer registers srv on s.
func RegisterRemarkServer(s grpc.ServiceRegistrar, srv RemarkServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns "/remark.v1.RemarkService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// RemarkClient calls remark.v1.RemarkService over a client connection.
type RemarkClient struct {
	cc grpc.ClientConnInterface
}

func NewRemarkClient(cc grpc.ClientConnInterface) *RemarkClient {
	return &RemarkClient{cc: cc}
}

func (c *RemarkClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RemarkClient) AnnotateRoster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodAnnotateRoster, in, opts...)
}

func (c *RemarkClient) GenerateRemarks(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGenerateRemarks, in, opts...)
}

func (c *RemarkClient) GetRun(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetRun, in, opts...)
}

func (c *RemarkClient) ListRuns(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListRuns, in, opts...)
}
