package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// jsonTime accepts RFC3339 strings or epoch seconds (fractions allowed) and
// always renders RFC3339Nano in UTC.
type jsonTime struct {
	time.Time
}

func (t jsonTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(formatTime(t.Time))
}

func (t *jsonTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := parseRFC3339(s)
		if err != nil {
			return fmt.Errorf("invalid time %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	secs, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("invalid time %s: %w", b, err)
	}
	whole := secs.IntPart()
	nanos := secs.Sub(decimal.NewFromInt(whole)).Shift(9).IntPart()
	t.Time = time.Unix(whole, nanos).UTC()
	return nil
}

type readingJSON struct {
	Time    jsonTime        `json:"time"`
	Reading decimal.Decimal `json:"reading"`
}

type storeReadingsRequestJSON struct {
	SmartMeterID        string        `json:"smartMeterId"`
	ElectricityReadings []readingJSON `json:"electricityReadings"`
}

type listReadingsResponseJSON struct {
	Readings      []readingJSON `json:"readings"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

type pricePlanJSON struct {
	PricePlanID     string                     `json:"pricePlanId"`
	Supplier        string                     `json:"supplier,omitempty"`
	UnitRate        decimal.Decimal            `json:"unitRate"`
	PeakMultipliers map[string]decimal.Decimal `json:"peakMultipliers,omitempty"`
}

type comparisonJSON struct {
	PricePlanID          string                     `json:"pricePlanId"`
	PricePlanComparisons map[string]decimal.Decimal `json:"pricePlanComparisons"`
}

type usageCostJSON struct {
	SmartMeterID string          `json:"smartMeterId"`
	PricePlanID  string          `json:"pricePlanId"`
	Window       string          `json:"window"`
	Cost         decimal.Decimal `json:"cost"`
}

type apiErrorJSON struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
