package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/pricing"
)

var ErrInvalidPagination = errors.New("invalid pagination")

// MaxPageSize bounds a single page of readings.
const MaxPageSize = 5_000

type ReadingsPage struct {
	Readings      []domain.Reading
	NextPageToken string
}

// ReadingsPage returns one page of a meter's readings in insertion order.
// A zero pageSize returns everything and must not carry a page token.
func (s *PricingService) ReadingsPage(ctx context.Context, meterID string, pageSize int, pageToken string) (ReadingsPage, error) {
	offset, err := parseOffsetToken(pageSize, pageToken)
	if err != nil {
		return ReadingsPage{}, err
	}
	if pageSize < 0 {
		return ReadingsPage{}, fmt.Errorf("%w: page_size must be >= 0", ErrInvalidPagination)
	}
	if pageSize > MaxPageSize {
		return ReadingsPage{}, fmt.Errorf("%w: page_size too large (max %d)", ErrInvalidPagination, MaxPageSize)
	}

	readings, err := s.Readings(ctx, meterID)
	if err != nil {
		return ReadingsPage{}, err
	}
	if offset > len(readings) {
		return ReadingsPage{}, fmt.Errorf("%w: page_token out of range", ErrInvalidPagination)
	}

	if pageSize == 0 {
		return ReadingsPage{Readings: readings}, nil
	}
	if offset == len(readings) {
		return ReadingsPage{}, nil
	}

	end := min(offset+pageSize, len(readings))
	next := ""
	if end < len(readings) {
		next = strconv.Itoa(end)
	}
	return ReadingsPage{
		Readings:      readings[offset:end],
		NextPageToken: next,
	}, nil
}

func parseOffsetToken(pageSize int, pageToken string) (int, error) {
	if pageToken == "" {
		return 0, nil
	}
	if pageSize <= 0 {
		return 0, fmt.Errorf("%w: page_token requires page_size", ErrInvalidPagination)
	}
	n, err := strconv.Atoi(pageToken)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid page_token", ErrInvalidPagination)
	}
	return n, nil
}

// IsInvalidArgument reports whether err was caused by caller input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, pricing.ErrInvalidArgument) || errors.Is(err, ErrInvalidPagination)
}
