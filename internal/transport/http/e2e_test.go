package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo/memrepo"
	"github.com/milad/joienergy/internal/service"
	grpcserver "github.com/milad/joienergy/internal/transport/grpc"
)

// This is a light end-to-end test:
// HTTP handler -> gRPC client -> in-memory gRPC server -> service -> repo.
func TestHTTP_ToGRPC_EndToEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	catalog, err := memrepo.NewCatalog(
		domain.PricePlan{ID: "price-plan-0", Supplier: "Dr Evil's Dark Energy", UnitRate: decimal.NewFromInt(10)},
		domain.PricePlan{ID: "price-plan-1", Supplier: "The Green Eco", UnitRate: decimal.NewFromInt(2)},
		domain.PricePlan{ID: "price-plan-2", Supplier: "Power for Everyone", UnitRate: decimal.NewFromInt(1)},
	)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	accounts := memrepo.NewAccounts(map[string]string{"smart-meter-0": "price-plan-0"})
	svc := service.NewPricingService(memrepo.NewReadingStore(), accounts, catalog,
		service.WithClock(func() time.Time { return now }),
	)

	lis := bufconn.Listen(1024 * 1024)
	g := grpc.NewServer()
	pricingv1.RegisterPricingServiceServer(g, grpcserver.New(svc, nil))
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	httpSrv := New(pricingv1.NewPricingServiceClient(conn))

	rr := serve(httpSrv, http.MethodPost, "/readings/store", `{
		"smartMeterId": "smart-meter-0",
		"electricityReadings": [
			{"time": "2024-03-10T10:00:00Z", "reading": "5.0"},
			{"time": "2024-03-10T12:00:00Z", "reading": "1.0"}
		]
	}`)
	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("store: status=%d want %d, body=%s", got, want, rr.Body.String())
	}

	rr = serve(httpSrv, http.MethodGet, "/readings/read/smart-meter-0", "")
	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("read: status=%d want %d, body=%s", got, want, rr.Body.String())
	}
	var readings struct {
		Readings []struct {
			Time string `json:"time"`
		} `json:"readings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &readings); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(readings.Readings) != 2 || readings.Readings[0].Time != "2024-03-10T10:00:00Z" {
		t.Fatalf("unexpected readings: %#v", readings.Readings)
	}

	rr = serve(httpSrv, http.MethodGet, "/price-plans/compare-all/smart-meter-0", "")
	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("compare: status=%d want %d, body=%s", got, want, rr.Body.String())
	}
	var cmp comparisonJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, want := cmp.PricePlanComparisons["price-plan-0"], decimal.NewFromInt(15); !got.Equal(want) {
		t.Fatalf("price-plan-0 cost=%s want %s", got, want)
	}

	rr = serve(httpSrv, http.MethodGet, "/price-plans/recommend/smart-meter-0?limit=1", "")
	var recs []map[string]decimal.Decimal
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatalf("unmarshal: %v (body=%s)", err, rr.Body.String())
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs)=%d want 1", len(recs))
	}
	if c, ok := recs[0]["price-plan-2"]; !ok || !c.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("unexpected recommendation: %v", recs[0])
	}

	rr = serve(httpSrv, http.MethodGet, "/smart-meter-0/last-week-usage", "")
	if got, want := rr.Code, http.StatusOK; got != want {
		t.Fatalf("usage: status=%d want %d, body=%s", got, want, rr.Body.String())
	}
	var usage usageCostJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &usage); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !usage.Cost.Equal(decimal.NewFromInt(15)) || usage.Window != "168h0m0s" {
		t.Fatalf("unexpected usage: %+v", usage)
	}

	rr = serve(httpSrv, http.MethodGet, "/readings/read/smart-meter-9", "")
	if got, want := rr.Code, http.StatusNotFound; got != want {
		t.Fatalf("unknown meter: status=%d want %d", got, want)
	}
	rr = serve(httpSrv, http.MethodGet, "/price-plans/recommend/smart-meter-0?limit=0", "")
	if got, want := rr.Code, http.StatusBadRequest; got != want {
		t.Fatalf("limit=0: status=%d want %d", got, want)
	}
}
