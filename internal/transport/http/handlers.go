package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
)

// DefaultUpstreamTimeout bounds each gRPC call made for a request.
const DefaultUpstreamTimeout = 5 * time.Second

const maxBodyBytes = 1 << 20

type Server struct {
	client  PricingClient
	mux     *http.ServeMux
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(client PricingClient, opts ...Option) *Server {
	s := &Server{
		client:  client,
		mux:     http.NewServeMux(),
		log:     zap.NewNop(),
		timeout: DefaultUpstreamTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.NewString()

	w.Header().Set("X-Request-Id", reqID)
	rr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		if rec := recover(); rec != nil {
			rr.status = http.StatusInternalServerError

			// If headers were already written we can only log.
			if !rr.wroteHeader {
				writeAPIError(rr, http.StatusInternalServerError, "internal_error", "internal error")
			}
			s.log.Error("panic handling request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", reqID),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}

		dur := time.Since(start)
		observeHTTPRequest(r, rr.status, dur)

		// Keep health checks + metrics endpoint quiet.
		if r.URL.Path != "/healthz" && r.URL.Path != "/metrics" {
			s.log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rr.status),
				zap.Duration("duration", dur.Truncate(time.Millisecond)),
				zap.String("request_id", reqID),
			)
		}
	}()

	s.mux.ServeHTTP(rr, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /readings/store", s.handleStoreReadings)
	s.mux.HandleFunc("GET /readings/read/{smartMeterId}", s.handleReadReadings)
	s.mux.HandleFunc("GET /price-plans", s.handleListPlans)
	s.mux.HandleFunc("GET /price-plans/compare-all/{smartMeterId}", s.handleCompareAll)
	s.mux.HandleFunc("GET /price-plans/recommend/{smartMeterId}", s.handleRecommend)
	s.mux.HandleFunc("GET /{smartMeterId}/last-week-usage", s.handleLastWeekUsage)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("/", s.handleNotFound)
}

// handleStoreReadings accepts {smartMeterId, electricityReadings:[{time, reading}]}.
func (s *Server) handleStoreReadings(w http.ResponseWriter, r *http.Request) {
	var body storeReadingsRequestJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", fmt.Sprintf("invalid body: %v", err))
		return
	}

	req := &pricingv1.StoreReadingsRequest{
		SmartMeterID:        body.SmartMeterID,
		ElectricityReadings: make([]pricingv1.Reading, 0, len(body.ElectricityReadings)),
	}
	for _, rd := range body.ElectricityReadings {
		req.ElectricityReadings = append(req.ElectricityReadings, pricingv1.Reading{Time: rd.Time.Time, Reading: rd.Reading})
	}

	ok := s.upstream(w, r, "StoreReadings", func(ctx context.Context) error {
		_, err := s.client.StoreReadings(ctx, req)
		return err
	})
	if !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleReadReadings returns a meter's readings in insertion order. Optional
// `page_size` and `page_token` page through them.
func (s *Server) handleReadReadings(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parseOptionalInt32(r.URL.Query().Get("page_size"))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid page_size")
		return
	}
	if pageSize < 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "page_size must be >= 0")
		return
	}
	pageToken := r.URL.Query().Get("page_token")
	if pageToken != "" && pageSize == 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_argument", "page_token requires page_size")
		return
	}

	req := &pricingv1.GetReadingsRequest{
		SmartMeterID: r.PathValue("smartMeterId"),
		PageSize:     pageSize,
		PageToken:    pageToken,
	}
	var resp *pricingv1.GetReadingsResponse
	ok := s.upstream(w, r, "GetReadings", func(ctx context.Context) (err error) {
		resp, err = s.client.GetReadings(ctx, req)
		return err
	})
	if !ok {
		return
	}

	out := make([]readingJSON, 0, len(resp.Readings))
	for _, rd := range resp.Readings {
		out = append(out, readingJSON{Time: jsonTime{rd.Time}, Reading: rd.Reading})
	}
	_ = writeJSON(w, http.StatusOK, listReadingsResponseJSON{
		Readings:      out,
		NextPageToken: resp.NextPageToken,
	})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	var resp *pricingv1.ListPlansResponse
	ok := s.upstream(w, r, "ListPlans", func(ctx context.Context) (err error) {
		resp, err = s.client.ListPlans(ctx, &pricingv1.ListPlansRequest{})
		return err
	})
	if !ok {
		return
	}

	out := make([]pricePlanJSON, 0, len(resp.Plans))
	for _, p := range resp.Plans {
		out = append(out, pricePlanJSON(p))
	}
	_ = writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompareAll(w http.ResponseWriter, r *http.Request) {
	req := &pricingv1.CompareAllPlansRequest{SmartMeterID: r.PathValue("smartMeterId")}
	var resp *pricingv1.CompareAllPlansResponse
	ok := s.upstream(w, r, "CompareAllPlans", func(ctx context.Context) (err error) {
		resp, err = s.client.CompareAllPlans(ctx, req)
		return err
	})
	if !ok {
		return
	}
	_ = writeJSON(w, http.StatusOK, comparisonJSON{
		PricePlanID:          resp.PricePlanID,
		PricePlanComparisons: resp.PricePlanComparisons,
	})
}

// handleRecommend answers with [{planId: cost}, ...], cheapest first.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req := &pricingv1.RecommendPlansRequest{SmartMeterID: r.PathValue("smartMeterId")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := parseOptionalInt32(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_argument", "invalid limit")
			return
		}
		req.Limit = &limit
	}

	var resp *pricingv1.RecommendPlansResponse
	ok := s.upstream(w, r, "RecommendPlans", func(ctx context.Context) (err error) {
		resp, err = s.client.RecommendPlans(ctx, req)
		return err
	})
	if !ok {
		return
	}

	out := make([]map[string]decimal.Decimal, 0, len(resp.Recommendations))
	for _, rec := range resp.Recommendations {
		out = append(out, map[string]decimal.Decimal{rec.PricePlanID: rec.Cost})
	}
	_ = writeJSON(w, http.StatusOK, out)
}

// handleLastWeekUsage prices the recent readings under the meter's plan.
// `window` is a Go duration in whole seconds and defaults to the server's
// window.
func (s *Server) handleLastWeekUsage(w http.ResponseWriter, r *http.Request) {
	req := &pricingv1.ComputeCostRequest{SmartMeterID: r.PathValue("smartMeterId")}
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Second || d%time.Second != 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid_argument", "window must be a whole number of seconds, at least 1s")
			return
		}
		req.WindowSeconds = int64(d / time.Second)
	}

	var resp *pricingv1.ComputeCostResponse
	ok := s.upstream(w, r, "ComputeCost", func(ctx context.Context) (err error) {
		resp, err = s.client.ComputeCost(ctx, req)
		return err
	})
	if !ok {
		return
	}
	_ = writeJSON(w, http.StatusOK, usageCostJSON{
		SmartMeterID: resp.SmartMeterID,
		PricePlanID:  resp.PricePlanID,
		Window:       (time.Duration(resp.WindowSeconds) * time.Second).String(),
		Cost:         resp.Cost,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, http.StatusNotFound, "not_found", "not found")
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(p)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	reqID := w.Header().Get("X-Request-Id")
	_ = writeJSON(w, status, apiErrorJSON{
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}
