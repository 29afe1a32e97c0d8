package scheme

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regulatory bid bounds as a share of chit value.
var (
	MinimumBidRate = decimal.RequireFromString("0.05")
	MaximumBidRate = decimal.RequireFromString("0.30")
)

type Derived struct {
	StartDate           time.Time
	EndDate             time.Time
	NumberOfSubscribers int
	MonthlyPremium      int64
	MinimumBid          int64
	MaximumBid          int64
}

// Derive computes every field that is a pure function of the terms.
// Duration must be positive; callers validate first.
func Derive(t Terms) Derived {
	start := DateOnly(t.ChitStartDate)
	value := decimal.NewFromInt(t.ChitValue)

	out := Derived{
		StartDate:           start,
		EndDate:             start.AddDate(0, t.ChitDuration, 0),
		NumberOfSubscribers: t.ChitDuration,
		MinimumBid:          value.Mul(MinimumBidRate).Round(0).IntPart(),
		MaximumBid:          value.Mul(MaximumBidRate).Round(0).IntPart(),
	}
	if t.ChitDuration > 0 {
		out.MonthlyPremium = value.Div(decimal.NewFromInt(int64(t.ChitDuration))).Round(0).IntPart()
	}
	return out
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthsElapsed counts whole months from start up to now, capped at limit.
// Month k is elapsed once start+k months is on or before now, matching how
// the end date is derived.
func MonthsElapsed(start, now time.Time, limit int) int {
	start, now = DateOnly(start), DateOnly(now)
	months := 0
	for months < limit && !start.AddDate(0, months+1, 0).After(now) {
		months++
	}
	return months
}

// ValidateTerms checks the creation constraints and reports every violated field.
func ValidateTerms(t Terms, today time.Time) error {
	verr := &ValidationError{}
	if t.ChitValue <= 0 {
		verr.Add("chitValue", t.ChitValue, "must be greater than 0")
	}
	if t.ChitDuration <= 0 {
		verr.Add("chitDuration", t.ChitDuration, "must be greater than 0")
	}
	switch {
	case t.ChitStartDate.IsZero():
		verr.Add("chitStartDate", nil, "is required")
	case DateOnly(t.ChitStartDate).Before(DateOnly(today)):
		verr.Add("chitStartDate", t.ChitStartDate.Format(DateLayout), "must be today or later")
	}
	return verr.OrNil()
}

const DateLayout = "2006-01-02"
