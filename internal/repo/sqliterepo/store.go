// Package sqliterepo persists meter readings in SQLite.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo"
)

var _ repo.ReadingStore = (*Store)(nil)

// ErrTimeOutOfRange is returned for reading times that do not fit in int64
// Unix nanoseconds.
var ErrTimeOutOfRange = errors.New("reading time out of range")

// Row ids are autoincrementing, so ORDER BY id is insertion order. Readings
// are stored as decimal strings to keep them exact.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS electricity_readings (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meter_id TEXT NOT NULL,
        recorded_at INTEGER NOT NULL,
        reading TEXT NOT NULL
    );`,
	`CREATE INDEX IF NOT EXISTS electricity_readings_meter
        ON electricity_readings (meter_id, id);`,
}

// Store is a ReadingStore backed by a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serialise through one connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Append stores readings in one transaction. Times outside the int64
// nanosecond range are rejected rather than wrapped.
func (s *Store) Append(ctx context.Context, meterID string, readings []domain.Reading) error {
	for _, r := range readings {
		if !domain.InReadingRange(r.Time) {
			return fmt.Errorf("reading for %q at %s: %w", meterID, r.Time.Format(time.RFC3339), ErrTimeOutOfRange)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO electricity_readings (meter_id, recorded_at, reading) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, meterID, r.Time.UnixNano(), r.Value.String()); err != nil {
			return fmt.Errorf("insert reading for %q: %w", meterID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Readings(ctx context.Context, meterID string) ([]domain.Reading, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT recorded_at, reading
        FROM electricity_readings WHERE meter_id = ? ORDER BY id`, meterID)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()

	var res []domain.Reading
	for rows.Next() {
		var (
			ts  int64
			raw string
		)
		if err := rows.Scan(&ts, &raw); err != nil {
			return nil, false, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, false, fmt.Errorf("meter %q: corrupt reading %q: %w", meterID, raw, err)
		}
		res = append(res, domain.Reading{Time: time.Unix(0, ts).UTC(), Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(res) == 0 {
		return nil, false, nil
	}
	return res, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
