package csvrepo

import (
	"context"
	"fmt"
	"os"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo"
)

// LoadFile appends every valid row of the CSV file at path to store, keeping
// file order per meter. It returns the number of readings stored.
//
// Parsing can be partially successful: when some rows are bad the good ones
// are still stored and the row errors are returned alongside the count.
func LoadFile(ctx context.Context, path string, store repo.ReadingStore) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	records, parseErr := ParseReadingsCSV(f)
	if len(records) == 0 && parseErr != nil {
		return 0, fmt.Errorf("parse csv %q: %w", path, parseErr)
	}

	n, err := Load(ctx, records, store)
	if err != nil {
		return n, err
	}
	if parseErr != nil {
		return n, fmt.Errorf("parse csv %q: %w", path, parseErr)
	}
	return n, nil
}

// Load groups records by meter, preserving their relative order, and appends
// each group to store in order of first appearance.
func Load(ctx context.Context, records []Record, store repo.ReadingStore) (int, error) {
	var (
		order   []string
		byMeter = make(map[string][]domain.Reading)
	)
	for _, r := range records {
		if _, seen := byMeter[r.MeterID]; !seen {
			order = append(order, r.MeterID)
		}
		byMeter[r.MeterID] = append(byMeter[r.MeterID], r.Reading)
	}

	n := 0
	for _, id := range order {
		if err := store.Append(ctx, id, byMeter[id]); err != nil {
			return n, fmt.Errorf("store readings for %q: %w", id, err)
		}
		n += len(byMeter[id])
	}
	return n, nil
}
