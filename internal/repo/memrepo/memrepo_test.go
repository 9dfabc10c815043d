package memrepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

func TestReadingStore_AppendKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewReadingStore()
	ctx := context.Background()

	if err := s.Append(ctx, "m", []domain.Reading{{Time: base.Add(time.Hour), Value: decimal.NewFromInt(2)}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, "m", []domain.Reading{{Time: base, Value: decimal.NewFromInt(1)}}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, ok, err := s.Readings(ctx, "m")
	if err != nil || !ok {
		t.Fatalf("Readings: ok=%v err=%v", ok, err)
	}
	if got, want := len(got), 2; got != want {
		t.Fatalf("len=%d want %d", got, want)
	}
	if !got[0].Time.Equal(base.Add(time.Hour)) {
		t.Fatalf("first reading time=%v, want insertion order", got[0].Time)
	}
}

func TestReadingStore_ReadingsIsSnapshot(t *testing.T) {
	t.Parallel()

	s := NewReadingStore()
	ctx := context.Background()
	_ = s.Append(ctx, "m", []domain.Reading{{Value: decimal.NewFromInt(1)}})

	snap, _, _ := s.Readings(ctx, "m")
	snap[0].Value = decimal.NewFromInt(99)
	_ = s.Append(ctx, "m", []domain.Reading{{Value: decimal.NewFromInt(2)}})

	again, _, _ := s.Readings(ctx, "m")
	if !again[0].Value.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("store was mutated through snapshot: %s", again[0].Value)
	}
	if got, want := len(snap), 1; got != want {
		t.Fatalf("snapshot len=%d want %d", got, want)
	}
}

func TestReadingStore_UnknownMeter(t *testing.T) {
	t.Parallel()

	_, ok, err := NewReadingStore().Readings(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected unknown meter")
	}
}

func TestReadingStore_ConcurrentAppendAndRead(t *testing.T) {
	t.Parallel()

	s := NewReadingStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Append(ctx, "m", []domain.Reading{{Value: decimal.NewFromInt(int64(j))}})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _, _ = s.Readings(ctx, "m")
			}
		}()
	}
	wg.Wait()

	got, _, _ := s.Readings(ctx, "m")
	if got, want := len(got), 400; got != want {
		t.Fatalf("len=%d want %d", got, want)
	}
}

func TestCatalog_KeepsOrderAndRejectsBadPlans(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog(
		domain.PricePlan{ID: "b", UnitRate: decimal.NewFromInt(2)},
		domain.PricePlan{ID: "a", UnitRate: decimal.NewFromInt(1)},
	)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	plans := c.Plans()
	if plans[0].ID != "b" || plans[1].ID != "a" {
		t.Fatalf("unexpected order: %v, %v", plans[0].ID, plans[1].ID)
	}
	if _, ok := c.Plan("a"); !ok {
		t.Fatalf("expected plan a")
	}
	if _, ok := c.Plan("zzz"); ok {
		t.Fatalf("unexpected plan zzz")
	}

	if _, err := NewCatalog(domain.PricePlan{ID: "x", UnitRate: decimal.Zero}); err == nil {
		t.Fatalf("expected error for zero unit rate")
	}
	if _, err := NewCatalog(
		domain.PricePlan{ID: "x", UnitRate: decimal.NewFromInt(1)},
		domain.PricePlan{ID: "x", UnitRate: decimal.NewFromInt(2)},
	); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestAccounts_Lookup(t *testing.T) {
	t.Parallel()

	src := map[string]string{"smart-meter-0": "price-plan-0"}
	a := NewAccounts(src)
	src["smart-meter-0"] = "changed"

	id, ok := a.PricePlanID("smart-meter-0")
	if !ok || id != "price-plan-0" {
		t.Fatalf("PricePlanID=%q ok=%v", id, ok)
	}
	if _, ok := a.PricePlanID("smart-meter-9"); ok {
		t.Fatalf("unexpected account")
	}
}
