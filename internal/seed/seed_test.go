package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milad/joienergy/internal/repo/memrepo"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRun_GeneratesForMetersWithoutReadings(t *testing.T) {
	ctx := context.Background()
	store := memrepo.NewReadingStore()

	csv := filepath.Join(t.TempDir(), "readings.csv")
	require.NoError(t, os.WriteFile(csv, []byte(
		"smart_meter_id,time,reading\n"+
			"smart-meter-0,2024-03-10T11:00:00Z,0.5\n"+
			"smart-meter-0,2024-03-10T11:30:00Z,NaN\n"+
			"smart-meter-0,2024-03-10T12:00:00Z,0.7\n"), 0o644))

	res, err := Run(ctx, store, []string{"smart-meter-0", "smart-meter-1"}, Options{
		CSVPath:    csv,
		Generate:   true,
		Count:      20,
		Interval:   10 * time.Second,
		RandomSeed: 42,
		Now:        func() time.Time { return now },
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FromCSV)
	assert.Equal(t, 20, res.Generated)

	rs, ok, err := store.Readings(ctx, "smart-meter-0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, rs, 2, "meters with CSV readings are not topped up")

	rs, ok, err = store.Readings(ctx, "smart-meter-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rs, 20)
	assert.True(t, rs[19].Time.Equal(now))
	assert.True(t, rs[0].Time.Equal(now.Add(-190*time.Second)))
}

func TestRun_MissingCSVIsAnError(t *testing.T) {
	_, err := Run(context.Background(), memrepo.NewReadingStore(), nil, Options{
		CSVPath: filepath.Join(t.TempDir(), "missing.csv"),
	}, nil)
	require.Error(t, err)
}

func TestRun_GenerationDisabled(t *testing.T) {
	ctx := context.Background()
	store := memrepo.NewReadingStore()

	res, err := Run(ctx, store, []string{"smart-meter-0"}, Options{Count: 20}, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Generated)

	_, ok, err := store.Readings(ctx, "smart-meter-0")
	require.NoError(t, err)
	assert.False(t, ok)
}
