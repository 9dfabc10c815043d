package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/milad/joienergy/internal/domain"
)

func TestRecentWindow_StrictCutoffKeepsOrder(t *testing.T) {
	t.Parallel()

	now := t0
	readings := []domain.Reading{
		reading(now.Add(-time.Hour), "3"),
		reading(now.Add(-DefaultWindow), "9"), // exactly on the cutoff: excluded
		reading(now.Add(-8*24*time.Hour), "1"),
		reading(now.Add(-2*time.Hour), "2"),
		reading(now.Add(-DefaultWindow+time.Nanosecond), "4"),
	}

	got := RecentWindow(readings, now, DefaultWindow)
	want := []domain.Reading{readings[0], readings[3], readings[4]}
	assert.Equal(t, want, got)
	assert.Len(t, readings, 5)
}

func TestRecentWindow_EmptyResultIsNotNil(t *testing.T) {
	t.Parallel()

	got := RecentWindow([]domain.Reading{reading(t0.Add(-30*24*time.Hour), "1")}, t0, DefaultWindow)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
