package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/godilite/remark-server/internal/grpc/mocks"
	"github.com/godilite/remark-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startBufconn(t *testing.T, srv RemarkServer, opts ...grpc.ServerOption) (*RemarkClient, func()) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterRemarkServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	stop := func() {
		conn.Close()
		s.Stop()
	}
	return NewRemarkClient(conn), stop
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/remark.v1.RemarkService/GetRun", FullMethod(methodGetRun))
}

func TestServiceDescDoesNotClaimProtoFile(t *testing.T) {
	assert.Equal(t, ServiceName, ServiceDesc.ServiceName)
	assert.Len(t, ServiceDesc.Methods, 4)
	assert.Equal(t, "", ServiceDesc.Metadata)
}

func TestRemarkServiceOverBufconn(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mockRemarks := &mocks.MockRemarkService{
		AnnotateFunc: func(ctx context.Context, req service.AnnotateRequest) (service.Run, error) {
			run := sampleRun("bufconn-run")
			run.Subject = req.Subject
			return run, nil
		},
		GetRunFunc: func(ctx context.Context, id string) (service.Run, error) {
			return service.Run{}, service.ErrRunNotFound
		},
	}
	handlers := NewGRPCHandlers(mockRemarks, nil, zap.NewNop(), time.Minute)

	var intercepted []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		intercepted = append(intercepted, info.FullMethod)
		return handler(ctx, req)
	}

	func() {
		client, stop := startBufconn(t, handlers, grpc.UnaryInterceptor(interceptor))
		defer stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := structpb.NewStruct(map[string]any{"scores": []any{9.5, "abc"}, "subject": "Toán"})
		require.NoError(t, err)

		resp, err := client.AnnotateRoster(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "bufconn-run", resp.AsMap()["run_id"])
		assert.Equal(t, "Toán", resp.AsMap()["subject"])

		idReq, err := structpb.NewStruct(map[string]any{"run_id": "missing"})
		require.NoError(t, err)
		_, err = client.GetRun(ctx, idReq)
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = client.ListRuns(ctx, &structpb.Struct{})
		assert.Equal(t, codes.Internal, status.Code(err))
	}()

	assert.Equal(t, []string{
		FullMethod(methodAnnotateRoster),
		FullMethod(methodGetRun),
		FullMethod(methodListRuns),
	}, intercepted)
}
