package faultrpc

import (
	"context"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"github.com/danielpatrickdp/falselabel/internal/telemetry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region server
// Server exposes a faults.Counter over gRPC. Counter failures travel in the
// response status field; only malformed requests become gRPC errors.
type Server struct {
	counter faults.Counter
}

// NewServer wraps counter.
func NewServer(counter faults.Counter) *Server {
	return &Server{counter: counter}
}

// CountFaults implements FaultServiceServer.
func (s *Server) CountFaults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	counts, err := s.counter.CountFaults(ctx, req)
	return encodeResponse(counts, err), nil
}

// NewGRPCServer returns a grpc.Server with s registered.
func NewGRPCServer(s *Server, maxMsgBytes int, opts ...grpc.ServerOption) *grpc.Server {
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	}
	gs := grpc.NewServer(opts...)
	RegisterFaultServiceServer(gs, s)
	return gs
}

// #endregion server

// #region interceptor
// UnaryInterceptor observes the duration and response status of every
// CountFaults call. Malformed requests are recorded as StatusInternal.
func UnaryInterceptor(c *telemetry.Collectors) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := faults.StatusInternal
		if out, ok := resp.(*structpb.Struct); ok && err == nil {
			code = int(out.GetFields()["status"].GetNumberValue())
		}
		c.ObserveCount(time.Since(start), code)
		return resp, err
	}
}

// #endregion interceptor
