package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/milad/joienergy/internal/domain"
)

func TestReadingsPage_Pages(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	var rs []domain.Reading
	for i := 0; i < 5; i++ {
		rs = append(rs, rd(now.Add(time.Duration(i)*time.Minute), "1"))
	}
	if err := svc.StoreReadings(ctx, "smart-meter-0", rs); err != nil {
		t.Fatalf("StoreReadings: %v", err)
	}

	page, err := svc.ReadingsPage(ctx, "smart-meter-0", 2, "")
	if err != nil {
		t.Fatalf("ReadingsPage: %v", err)
	}
	if got, want := len(page.Readings), 2; got != want {
		t.Fatalf("len=%d want %d", got, want)
	}
	if got, want := page.NextPageToken, "2"; got != want {
		t.Fatalf("next=%q want %q", got, want)
	}

	page, err = svc.ReadingsPage(ctx, "smart-meter-0", 2, "4")
	if err != nil {
		t.Fatalf("ReadingsPage: %v", err)
	}
	if got, want := len(page.Readings), 1; got != want {
		t.Fatalf("len=%d want %d", got, want)
	}
	if page.NextPageToken != "" {
		t.Fatalf("expected last page, next=%q", page.NextPageToken)
	}

	all, err := svc.ReadingsPage(ctx, "smart-meter-0", 0, "")
	if err != nil {
		t.Fatalf("ReadingsPage: %v", err)
	}
	if got, want := len(all.Readings), 5; got != want {
		t.Fatalf("len=%d want %d", got, want)
	}
}

func TestReadingsPage_RejectsBadPagination(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	_ = svc.StoreReadings(ctx, "smart-meter-0", []domain.Reading{rd(now, "1")})

	cases := []struct {
		size  int
		token string
	}{
		{0, "1"},
		{-1, ""},
		{MaxPageSize + 1, ""},
		{1, "abc"},
		{1, "9"},
	}
	for _, tc := range cases {
		_, err := svc.ReadingsPage(ctx, "smart-meter-0", tc.size, tc.token)
		if !errors.Is(err, ErrInvalidPagination) || !IsInvalidArgument(err) {
			t.Fatalf("size=%d token=%q: err=%v want ErrInvalidPagination", tc.size, tc.token, err)
		}
	}
}
