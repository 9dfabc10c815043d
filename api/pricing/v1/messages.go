// Package pricingv1 is the wire contract of the pricing gRPC service.
//
// pricing.proto describes the service. The messages here are hand-written Go
// structs that mirror it field for field, and they travel with the JSON codec
// registered in this package instead of protobuf binary encoding. Decimals are
// strings on the wire so no precision is lost, and times are RFC3339Nano.
//
// TODO: generate this package with protoc-gen-go and protoc-gen-go-grpc from
// pricing.proto once the build has a protoc step, keeping the json codec for
// existing clients.
package pricingv1

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/milad/joienergy/internal/domain"
)

type Reading struct {
	Time    time.Time       `json:"time"`
	Reading decimal.Decimal `json:"reading"`
}

// StoreReadingsRequest is also the payload of the Kafka ingest topic.
type StoreReadingsRequest struct {
	SmartMeterID        string    `json:"smartMeterId"`
	ElectricityReadings []Reading `json:"electricityReadings"`
}

type StoreReadingsResponse struct{}

type GetReadingsRequest struct {
	SmartMeterID string `json:"smartMeterId"`
	PageSize     int32  `json:"pageSize,omitempty"`
	PageToken    string `json:"pageToken,omitempty"`
}

type GetReadingsResponse struct {
	Readings      []Reading `json:"readings"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

type ComputeCostRequest struct {
	SmartMeterID string `json:"smartMeterId"`
	// WindowSeconds of zero selects the server's default window.
	WindowSeconds int64 `json:"windowSeconds,omitempty"`
}

type ComputeCostResponse struct {
	SmartMeterID  string          `json:"smartMeterId"`
	PricePlanID   string          `json:"pricePlanId"`
	WindowSeconds int64           `json:"windowSeconds"`
	Cost          decimal.Decimal `json:"cost"`
}

type CompareAllPlansRequest struct {
	SmartMeterID string `json:"smartMeterId"`
}

type PlanCost struct {
	PricePlanID string          `json:"pricePlanId"`
	Cost        decimal.Decimal `json:"cost"`
}

type CompareAllPlansResponse struct {
	PricePlanID          string                     `json:"pricePlanId"`
	PricePlanComparisons map[string]decimal.Decimal `json:"pricePlanComparisons"`
	// Ranked lists every plan, cheapest first.
	Ranked []PlanCost `json:"ranked"`
}

type RecommendPlansRequest struct {
	SmartMeterID string `json:"smartMeterId"`
	// Limit is optional; when set it must be positive.
	Limit *int32 `json:"limit,omitempty"`
}

type RecommendPlansResponse struct {
	Recommendations []PlanCost `json:"recommendations"`
}

type ListPlansRequest struct{}

type PricePlan struct {
	PricePlanID string          `json:"pricePlanId"`
	Supplier    string          `json:"supplier,omitempty"`
	UnitRate    decimal.Decimal `json:"unitRate"`
	// PeakMultipliers is keyed by lower-case weekday name.
	PeakMultipliers map[string]decimal.Decimal `json:"peakMultipliers,omitempty"`
}

type ListPlansResponse struct {
	Plans []PricePlan `json:"plans"`
}

func FromDomainReadings(rs []domain.Reading) []Reading {
	out := make([]Reading, 0, len(rs))
	for _, r := range rs {
		out = append(out, Reading{Time: r.Time.UTC(), Reading: r.Value})
	}
	return out
}

func ToDomainReadings(rs []Reading) []domain.Reading {
	out := make([]domain.Reading, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.Reading{Time: r.Time, Value: r.Reading})
	}
	return out
}

func FromDomainPlanCosts(cs []domain.PlanCost) []PlanCost {
	out := make([]PlanCost, 0, len(cs))
	for _, c := range cs {
		out = append(out, PlanCost{PricePlanID: c.PlanID, Cost: c.Cost})
	}
	return out
}

func FromDomainPlan(p domain.PricePlan) PricePlan {
	out := PricePlan{
		PricePlanID: p.ID,
		Supplier:    p.Supplier,
		UnitRate:    p.UnitRate,
	}
	if len(p.PeakMultipliers) > 0 {
		out.PeakMultipliers = make(map[string]decimal.Decimal, len(p.PeakMultipliers))
		for day, m := range p.PeakMultipliers {
			out.PeakMultipliers[lowerWeekday(day)] = m
		}
	}
	return out
}

func lowerWeekday(d time.Weekday) string {
	s := []byte(d.String())
	s[0] += 'a' - 'A'
	return string(s)
}
