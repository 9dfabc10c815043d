package pricing

import (
	"time"

	"github.com/milad/joienergy/internal/domain"
)

// DefaultWindow is the trailing period used for "last week" usage.
const DefaultWindow = 7 * 24 * time.Hour

// RecentWindow returns the readings strictly newer than now-window, in their
// original order. The input slice is not modified. An empty result is valid.
func RecentWindow(readings []domain.Reading, now time.Time, window time.Duration) []domain.Reading {
	cutoff := now.Add(-window)
	out := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Time.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
