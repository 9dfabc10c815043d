// Package seed fills a reading store at startup from a CSV file and from
// generated readings.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/milad/joienergy/internal/generator"
	"github.com/milad/joienergy/internal/repo"
	"github.com/milad/joienergy/internal/repo/csvrepo"
)

type Options struct {
	// CSVPath is loaded first when set.
	CSVPath string
	// Generate adds Count readings, Interval apart, to every meter that has
	// none after the CSV load.
	Generate   bool
	Count      int
	Interval   time.Duration
	RandomSeed uint64
	Now        func() time.Time
}

type Result struct {
	FromCSV   int
	Generated int
}

// Run seeds store. Bad CSV rows are logged and skipped; an unreadable file
// is an error.
func Run(ctx context.Context, store repo.ReadingStore, meterIDs []string, opts Options, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result

	if opts.CSVPath != "" {
		n, err := csvrepo.LoadFile(ctx, opts.CSVPath, store)
		res.FromCSV = n
		if err != nil {
			if n == 0 {
				return res, err
			}
			// A few bad rows (e.g. NaN) should not stop startup.
			log.Warn("csv loaded with errors", zap.String("path", opts.CSVPath), zap.Int("stored", n), zap.Error(err))
		} else {
			log.Info("csv loaded", zap.String("path", opts.CSVPath), zap.Int("stored", n))
		}
	}

	if !opts.Generate || opts.Count <= 0 {
		return res, nil
	}

	seed := opts.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := generator.New(seed)
	if opts.Interval > 0 {
		gen.Interval = opts.Interval
	}
	if opts.Now != nil {
		gen.Now = opts.Now
	}

	for _, id := range meterIDs {
		_, ok, err := store.Readings(ctx, id)
		if err != nil {
			return res, fmt.Errorf("check readings of %q: %w", id, err)
		}
		if ok {
			continue
		}
		if err := store.Append(ctx, id, gen.Generate(opts.Count)); err != nil {
			return res, fmt.Errorf("seed %q: %w", id, err)
		}
		res.Generated += opts.Count
	}
	log.Info("generated readings", zap.Int("meters", len(meterIDs)), zap.Int("readings", res.Generated))
	return res, nil
}
