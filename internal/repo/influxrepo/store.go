// Package influxrepo stores meter readings as InfluxDB v2 points.
//
// Each reading becomes one point in the electricity_reading measurement,
// tagged with the meter id and a zero-padded write sequence. The value is
// written as a string field so it round-trips as an exact decimal. The
// sequence tag keeps readings that share a timestamp in separate series, and
// reads sort on it to return readings in insertion order.
package influxrepo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/repo"
)

const (
	measurement = "electricity_reading"
	meterTag    = "meter_id"
	valueField  = "reading"
	seqTag      = "seq"
)

var _ repo.ReadingStore = (*Store)(nil)

// Config selects the InfluxDB endpoint and bucket.
type Config struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Store is a ReadingStore backed by InfluxDB v2.
type Store struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	query  api.QueryAPI
	bucket string
	// seq is the last sequence number handed out. It starts at the wall
	// clock so restarts keep counting upwards.
	seq atomic.Int64
}

func New(cfg Config) *Store {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	s := &Store{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		query:  client.QueryAPI(cfg.Org),
		bucket: cfg.Bucket,
	}
	s.seq.Store(time.Now().UnixNano())
	return s
}

// Ping verifies that the server is reachable and healthy.
func (s *Store) Ping(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx health: %w", err)
	}
	if health.Status != "pass" {
		return fmt.Errorf("influx health status: %s", health.Status)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, meterID string, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	for _, r := range readings {
		if !domain.InReadingRange(r.Time) {
			return fmt.Errorf("reading for %q at %s: time out of range", meterID, r.Time.Format(time.RFC3339))
		}
	}

	n := int64(len(readings))
	first := s.seq.Add(n) - n + 1
	points := make([]*write.Point, 0, len(readings))
	for i, r := range readings {
		points = append(points, pointFor(meterID, r, first+int64(i)))
	}
	if err := s.write.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write readings for %q: %w", meterID, err)
	}
	return nil
}

func (s *Store) Readings(ctx context.Context, meterID string) ([]domain.Reading, bool, error) {
	result, err := s.query.Query(ctx, readingsQuery(s.bucket, meterID))
	if err != nil {
		return nil, false, fmt.Errorf("query readings for %q: %w", meterID, err)
	}
	defer func() { _ = result.Close() }()

	var res []domain.Reading
	for result.Next() {
		rec := result.Record()
		raw, ok := rec.Value().(string)
		if !ok {
			return nil, false, fmt.Errorf("meter %q: unexpected reading type %T", meterID, rec.Value())
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, false, fmt.Errorf("meter %q: corrupt reading %q: %w", meterID, raw, err)
		}
		res = append(res, domain.Reading{Time: rec.Time().UTC(), Value: v})
	}
	if err := result.Err(); err != nil {
		return nil, false, fmt.Errorf("query readings for %q: %w", meterID, err)
	}
	if len(res) == 0 {
		return nil, false, nil
	}
	return res, true, nil
}

// Close releases the underlying client resources.
func (s *Store) Close() { s.client.Close() }

func pointFor(meterID string, r domain.Reading, seq int64) *write.Point {
	return write.NewPointWithMeasurement(measurement).
		AddTag(meterTag, meterID).
		AddTag(seqTag, formatSeq(seq)).
		AddField(valueField, r.Value.String()).
		SetTime(r.Time)
}

// formatSeq pads to 19 digits so lexical order is numeric order.
func formatSeq(seq int64) string { return fmt.Sprintf("%019d", seq) }

func readingsQuery(bucket, meterID string) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: 0)
  |> filter(fn: (r) => r._measurement == %s and r.%s == %s and r._field == %s)
  |> group()
  |> sort(columns: [%s])`,
		fluxString(bucket), fluxString(measurement), meterTag, fluxString(meterID), fluxString(valueField), fluxString(seqTag))
}

var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `${`, `\${`)

func fluxString(s string) string {
	return `"` + fluxEscaper.Replace(s) + `"`
}
