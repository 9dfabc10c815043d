package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
)

// PricingClient is the part of the gRPC client the gateway uses, kept as an
// interface so tests can fake it.
type PricingClient interface {
	StoreReadings(ctx context.Context, in *pricingv1.StoreReadingsRequest, opts ...grpc.CallOption) (*pricingv1.StoreReadingsResponse, error)
	GetReadings(ctx context.Context, in *pricingv1.GetReadingsRequest, opts ...grpc.CallOption) (*pricingv1.GetReadingsResponse, error)
	ComputeCost(ctx context.Context, in *pricingv1.ComputeCostRequest, opts ...grpc.CallOption) (*pricingv1.ComputeCostResponse, error)
	CompareAllPlans(ctx context.Context, in *pricingv1.CompareAllPlansRequest, opts ...grpc.CallOption) (*pricingv1.CompareAllPlansResponse, error)
	RecommendPlans(ctx context.Context, in *pricingv1.RecommendPlansRequest, opts ...grpc.CallOption) (*pricingv1.RecommendPlansResponse, error)
	ListPlans(ctx context.Context, in *pricingv1.ListPlansRequest, opts ...grpc.CallOption) (*pricingv1.ListPlansResponse, error)
}

// upstream runs one gRPC call under the gateway timeout and records it. On
// failure the mapped API error has already been written and false is
// returned.
func (s *Server) upstream(w http.ResponseWriter, r *http.Request, method string, call func(ctx context.Context) error) bool {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	err := call(ctx)
	dur := time.Since(start)
	observeUpstreamGRPC(method, status.Code(err).String(), dur)
	if err == nil {
		return true
	}
	writeUpstreamError(w, err)
	return false
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		writeAPIError(w, http.StatusBadGateway, "upstream_error", "upstream error")
		return
	}
	switch st.Code() {
	case codes.InvalidArgument:
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", st.Message())
	case codes.NotFound:
		writeAPIError(w, http.StatusNotFound, "not_found", st.Message())
	case codes.FailedPrecondition:
		writeAPIError(w, http.StatusUnprocessableEntity, "insufficient_data", st.Message())
	case codes.OutOfRange:
		writeAPIError(w, http.StatusUnprocessableEntity, "degenerate_time_window", st.Message())
	case codes.DeadlineExceeded:
		writeAPIError(w, http.StatusGatewayTimeout, "upstream_timeout", "upstream timeout")
	default:
		writeAPIError(w, http.StatusBadGateway, "upstream_error", "upstream error")
	}
}

func parseRFC3339(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseOptionalInt32(v string) (int32, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
