package pricingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "joienergy.pricing.v1.PricingService"

const (
	StoreReadingsFullMethodName   = "/" + ServiceName + "/StoreReadings"
	GetReadingsFullMethodName     = "/" + ServiceName + "/GetReadings"
	ComputeCostFullMethodName     = "/" + ServiceName + "/ComputeCost"
	CompareAllPlansFullMethodName = "/" + ServiceName + "/CompareAllPlans"
	RecommendPlansFullMethodName  = "/" + ServiceName + "/RecommendPlans"
	ListPlansFullMethodName       = "/" + ServiceName + "/ListPlans"
)

// PricingServiceClient is the client API for the pricing service.
type PricingServiceClient interface {
	StoreReadings(ctx context.Context, in *StoreReadingsRequest, opts ...grpc.CallOption) (*StoreReadingsResponse, error)
	GetReadings(ctx context.Context, in *GetReadingsRequest, opts ...grpc.CallOption) (*GetReadingsResponse, error)
	ComputeCost(ctx context.Context, in *ComputeCostRequest, opts ...grpc.CallOption) (*ComputeCostResponse, error)
	CompareAllPlans(ctx context.Context, in *CompareAllPlansRequest, opts ...grpc.CallOption) (*CompareAllPlansResponse, error)
	RecommendPlans(ctx context.Context, in *RecommendPlansRequest, opts ...grpc.CallOption) (*RecommendPlansResponse, error)
	ListPlans(ctx context.Context, in *ListPlansRequest, opts ...grpc.CallOption) (*ListPlansResponse, error)
}

type pricingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingServiceClient(cc grpc.ClientConnInterface) PricingServiceClient {
	return &pricingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pricingServiceClient) StoreReadings(ctx context.Context, in *StoreReadingsRequest, opts ...grpc.CallOption) (*StoreReadingsResponse, error) {
	return invoke[StoreReadingsResponse](ctx, c.cc, StoreReadingsFullMethodName, in, opts)
}

func (c *pricingServiceClient) GetReadings(ctx context.Context, in *GetReadingsRequest, opts ...grpc.CallOption) (*GetReadingsResponse, error) {
	return invoke[GetReadingsResponse](ctx, c.cc, GetReadingsFullMethodName, in, opts)
}

func (c *pricingServiceClient) ComputeCost(ctx context.Context, in *ComputeCostRequest, opts ...grpc.CallOption) (*ComputeCostResponse, error) {
	return invoke[ComputeCostResponse](ctx, c.cc, ComputeCostFullMethodName, in, opts)
}

func (c *pricingServiceClient) CompareAllPlans(ctx context.Context, in *CompareAllPlansRequest, opts ...grpc.CallOption) (*CompareAllPlansResponse, error) {
	return invoke[CompareAllPlansResponse](ctx, c.cc, CompareAllPlansFullMethodName, in, opts)
}

func (c *pricingServiceClient) RecommendPlans(ctx context.Context, in *RecommendPlansRequest, opts ...grpc.CallOption) (*RecommendPlansResponse, error) {
	return invoke[RecommendPlansResponse](ctx, c.cc, RecommendPlansFullMethodName, in, opts)
}

func (c *pricingServiceClient) ListPlans(ctx context.Context, in *ListPlansRequest, opts ...grpc.CallOption) (*ListPlansResponse, error) {
	return invoke[ListPlansResponse](ctx, c.cc, ListPlansFullMethodName, in, opts)
}

// PricingServiceServer is the server API for the pricing service.
type PricingServiceServer interface {
	StoreReadings(context.Context, *StoreReadingsRequest) (*StoreReadingsResponse, error)
	GetReadings(context.Context, *GetReadingsRequest) (*GetReadingsResponse, error)
	ComputeCost(context.Context, *ComputeCostRequest) (*ComputeCostResponse, error)
	CompareAllPlans(context.Context, *CompareAllPlansRequest) (*CompareAllPlansResponse, error)
	RecommendPlans(context.Context, *RecommendPlansRequest) (*RecommendPlansResponse, error)
	ListPlans(context.Context, *ListPlansRequest) (*ListPlansResponse, error)
}

// UnimplementedPricingServiceServer can be embedded to keep implementations
// forward compatible.
type UnimplementedPricingServiceServer struct{}

func (UnimplementedPricingServiceServer) StoreReadings(context.Context, *StoreReadingsRequest) (*StoreReadingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StoreReadings not implemented")
}
func (UnimplementedPricingServiceServer) GetReadings(context.Context, *GetReadingsRequest) (*GetReadingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReadings not implemented")
}
func (UnimplementedPricingServiceServer) ComputeCost(context.Context, *ComputeCostRequest) (*ComputeCostResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ComputeCost not implemented")
}
func (UnimplementedPricingServiceServer) CompareAllPlans(context.Context, *CompareAllPlansRequest) (*CompareAllPlansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompareAllPlans not implemented")
}
func (UnimplementedPricingServiceServer) RecommendPlans(context.Context, *RecommendPlansRequest) (*RecommendPlansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecommendPlans not implemented")
}
func (UnimplementedPricingServiceServer) ListPlans(context.Context, *ListPlansRequest) (*ListPlansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPlans not implemented")
}

func RegisterPricingServiceServer(s grpc.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(PricingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PricingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PricingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the pricing service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StoreReadings", Handler: unaryHandler(StoreReadingsFullMethodName, PricingServiceServer.StoreReadings)},
		{MethodName: "GetReadings", Handler: unaryHandler(GetReadingsFullMethodName, PricingServiceServer.GetReadings)},
		{MethodName: "ComputeCost", Handler: unaryHandler(ComputeCostFullMethodName, PricingServiceServer.ComputeCost)},
		{MethodName: "CompareAllPlans", Handler: unaryHandler(CompareAllPlansFullMethodName, PricingServiceServer.CompareAllPlans)},
		{MethodName: "RecommendPlans", Handler: unaryHandler(RecommendPlansFullMethodName, PricingServiceServer.RecommendPlans)},
		{MethodName: "ListPlans", Handler: unaryHandler(ListPlansFullMethodName, PricingServiceServer.ListPlans)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "joienergy/pricing/v1",
}
