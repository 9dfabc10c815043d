package grpcserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
	"github.com/milad/joienergy/internal/pricing"
	"github.com/milad/joienergy/internal/service"
)

type Server struct {
	pricingv1.UnimplementedPricingServiceServer
	svc *service.PricingService
	log *zap.Logger
}

func New(svc *service.PricingService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

func (s *Server) StoreReadings(ctx context.Context, req *pricingv1.StoreReadingsRequest) (*pricingv1.StoreReadingsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	err := s.svc.StoreReadings(ctx, req.SmartMeterID, pricingv1.ToDomainReadings(req.ElectricityReadings))
	if err != nil {
		return nil, s.toStatus("StoreReadings", err)
	}
	return &pricingv1.StoreReadingsResponse{}, nil
}

func (s *Server) GetReadings(ctx context.Context, req *pricingv1.GetReadingsRequest) (*pricingv1.GetReadingsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	page, err := s.svc.ReadingsPage(ctx, req.SmartMeterID, int(req.PageSize), req.PageToken)
	if err != nil {
		return nil, s.toStatus("GetReadings", err)
	}
	return &pricingv1.GetReadingsResponse{
		Readings:      pricingv1.FromDomainReadings(page.Readings),
		NextPageToken: page.NextPageToken,
	}, nil
}

func (s *Server) ComputeCost(ctx context.Context, req *pricingv1.ComputeCostRequest) (*pricingv1.ComputeCostResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	res, err := s.svc.ComputeCost(ctx, req.SmartMeterID, time.Duration(req.WindowSeconds)*time.Second)
	if err != nil {
		return nil, s.toStatus("ComputeCost", err)
	}
	return &pricingv1.ComputeCostResponse{
		SmartMeterID:  res.MeterID,
		PricePlanID:   res.PlanID,
		WindowSeconds: int64(res.Window / time.Second),
		Cost:          res.Cost,
	}, nil
}

func (s *Server) CompareAllPlans(ctx context.Context, req *pricingv1.CompareAllPlansRequest) (*pricingv1.CompareAllPlansResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	cmp, err := s.svc.CompareAllPlans(ctx, req.SmartMeterID)
	if err != nil {
		return nil, s.toStatus("CompareAllPlans", err)
	}
	return &pricingv1.CompareAllPlansResponse{
		PricePlanID:          cmp.SubscribedPlanID,
		PricePlanComparisons: cmp.CostsByPlan,
		Ranked:               pricingv1.FromDomainPlanCosts(cmp.Ranked),
	}, nil
}

func (s *Server) RecommendPlans(ctx context.Context, req *pricingv1.RecommendPlansRequest) (*pricingv1.RecommendPlansResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	var limit *int
	if req.Limit != nil {
		n := int(*req.Limit)
		limit = &n
	}
	recs, err := s.svc.RecommendPlans(ctx, req.SmartMeterID, limit)
	if err != nil {
		return nil, s.toStatus("RecommendPlans", err)
	}
	return &pricingv1.RecommendPlansResponse{
		Recommendations: pricingv1.FromDomainPlanCosts(recs),
	}, nil
}

func (s *Server) ListPlans(ctx context.Context, _ *pricingv1.ListPlansRequest) (*pricingv1.ListPlansResponse, error) {
	plans := s.svc.Plans()
	out := make([]pricingv1.PricePlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, pricingv1.FromDomainPlan(p))
	}
	return &pricingv1.ListPlansResponse{Plans: out}, nil
}

// toStatus maps service errors onto gRPC codes. Unclassified errors are
// logged and hidden behind a generic message.
func (s *Server) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, pricing.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case service.IsInvalidArgument(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, pricing.ErrInsufficientData):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, pricing.ErrDegenerateTimeWindow):
		return status.Error(codes.OutOfRange, err.Error())
	}
	s.log.Error("request failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
