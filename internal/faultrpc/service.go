package faultrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// Messages travel as google.protobuf.Struct so no generated code is needed.
//
// Request fields:  original, reconstructed ([]number), width, height, depth,
//                  connectivity, accelerator (number).
// Response fields: status (number), message (string), false_min, false_max,
//                  false_labels (number).
const (
	serviceName       = "falselabel.v1.FaultCounter"
	countFaultsMethod = "/" + serviceName + "/CountFaults"
)

// FaultServiceClient is the client side of the FaultCounter service.
type FaultServiceClient interface {
	CountFaults(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type faultServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFaultServiceClient binds a FaultServiceClient to a connection.
func NewFaultServiceClient(cc grpc.ClientConnInterface) FaultServiceClient {
	return &faultServiceClient{cc: cc}
}

func (c *faultServiceClient) CountFaults(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, countFaultsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// FaultServiceServer is the server side of the FaultCounter service.
type FaultServiceServer interface {
	CountFaults(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFaultServiceServer attaches srv to s.
func RegisterFaultServiceServer(s grpc.ServiceRegistrar, srv FaultServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CountFaults", Handler: countFaultsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "falselabel/v1/faults.proto",
}

func countFaultsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FaultServiceServer).CountFaults(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: countFaultsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FaultServiceServer).CountFaults(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc
