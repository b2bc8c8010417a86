// Package usage records billable AI usage per user.
package usage

import (
	"context"
	stderrors "errors"
	"time"

	"lettercraft/internal/errors"
)

// Kind is a billable service type
type Kind string

const (
	KindLetterGeneration  Kind = "letter_generation"
	KindLetterImprovement Kind = "letter_improvement"
	KindLetterAnalysis    Kind = "letter_analysis"
)

// DefaultRate applies to kinds missing from Rates
const DefaultRate = 0.002

// Rates are prices per 1000 units
var Rates = map[Kind]float64{
	KindLetterGeneration:  0.002,
	KindLetterImprovement: 0.001,
	KindLetterAnalysis:    0.0005,
}

// CalculateCost returns the cost of units of kind
func CalculateCost(kind Kind, units int) float64 {
	rate, ok := Rates[kind]
	if !ok {
		rate = DefaultRate
	}
	return float64(units) / 1000 * rate
}

// Record is one usage event
type Record struct {
	UserID    string
	Kind      Kind
	Units     int
	CreatedAt time.Time
}

// Cost returns the record's cost
func (r Record) Cost() float64 {
	return CalculateCost(r.Kind, r.Units)
}

// Tracker persists usage records
type Tracker interface {
	Record(ctx context.Context, rec Record) error
}

// LogTracker writes every record to the structured log
type LogTracker struct {
	logger *errors.Logger
}

// NewLogTracker creates a tracker that only logs
func NewLogTracker(logger *errors.Logger) *LogTracker {
	return &LogTracker{logger: logger}
}

// Record implements Tracker
func (t *LogTracker) Record(_ context.Context, rec Record) error {
	if t.logger != nil {
		t.logger.Info("AI usage recorded",
			"user_id", rec.UserID,
			"service_type", string(rec.Kind),
			"units", rec.Units,
			"cost", rec.Cost())
	}
	return nil
}

// MultiTracker fans a record out to every tracker
type MultiTracker []Tracker

// Record calls every tracker and joins their errors
func (m MultiTracker) Record(ctx context.Context, rec Record) error {
	var errs []error
	for _, t := range m {
		if err := t.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// NopTracker discards records
type NopTracker struct{}

// Record implements Tracker
func (NopTracker) Record(context.Context, Record) error { return nil }
