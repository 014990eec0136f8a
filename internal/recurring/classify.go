package recurring

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

// Cadence is the inferred repetition of a recurring pattern.
type Cadence string

const (
	CadenceMonthly Cadence = "monthly"
	CadenceAnnual  Cadence = "annual"
)

// Classification thresholds.
const (
	minMonthlyInterval = 25
	maxMonthlyInterval = 35
	minAnnualInterval  = 360
	maxAnnualInterval  = 370
	maxDayVariation    = 3
)

var maxAmountVariation = decimal.RequireFromString("0.20")

// Reasons a group is not a recurring pattern.
var (
	ErrNoAmount       = errors.New("average amount is not positive")
	ErrUnstableAmount = errors.New("amounts vary too much")
	ErrNoEvidence     = errors.New("no evidence of recurrence")
	ErrDayDrift       = errors.New("billing day drifts")
	ErrIrregular      = errors.New("interval is neither monthly nor annual")
)

// Profile describes a confirmed recurring pattern. Classify never returns a
// partially filled Profile.
type Profile struct {
	CanonicalKey   string
	Label          string
	Cadence        Cadence
	Amount         core.Money // rounded to whole units
	DayOfMonth     int
	LastOccurrence core.Date
	Occurrences    int
}

// Classify decides whether g is a recurring obligation. The checks run in
// order (amount stability, recurrence evidence, billing day, interval) and the
// first failure is returned wrapping one of the Err* sentinels.
func Classify(g PatternGroup, hints Hints) (Profile, error) {
	if len(g.Members) < MinOccurrences {
		return Profile{}, fmt.Errorf("%w: only %d occurrences", ErrNoEvidence, len(g.Members))
	}

	avg, err := stableAmount(g.Members)
	if err != nil {
		return Profile{}, err
	}

	if !hasEvidence(g, hints) {
		return Profile{}, ErrNoEvidence
	}

	avgInterval, avgDay, dayVariation := intervals(g.Members)
	monthly := avgInterval >= minMonthlyInterval && avgInterval <= maxMonthlyInterval
	if monthly && dayVariation > maxDayVariation {
		return Profile{}, fmt.Errorf("%w: %d days around day %d", ErrDayDrift, dayVariation, avgDay)
	}

	var cadence Cadence
	switch {
	case monthly:
		cadence = CadenceMonthly
	case avgInterval >= minAnnualInterval && avgInterval <= maxAnnualInterval:
		cadence = CadenceAnnual
	default:
		return Profile{}, fmt.Errorf("%w: average %.1f days", ErrIrregular, avgInterval)
	}

	last := g.Last()
	return Profile{
		CanonicalKey:   g.CanonicalKey,
		Label:          DisplayName(last.Description),
		Cadence:        cadence,
		Amount:         core.FromUnits(avg.Round(0).IntPart()),
		DayOfMonth:     avgDay,
		LastOccurrence: last.OccurredOn,
		Occurrences:    len(g.Members),
	}, nil
}

// stableAmount returns the mean amount when every member stays within 20% of
// it and the spread between the smallest and largest stays within 20% of the
// smallest.
func stableAmount(members []core.Transaction) (decimal.Decimal, error) {
	amounts := make([]decimal.Decimal, len(members))
	sum := decimal.Zero
	for i, m := range members {
		amounts[i] = decimal.New(m.Amount.Cents, -2)
		sum = sum.Add(amounts[i])
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(amounts))))
	if !avg.IsPositive() {
		return decimal.Zero, ErrNoAmount
	}

	lo, hi := decimal.Min(amounts[0], amounts[1:]...), decimal.Max(amounts[0], amounts[1:]...)
	maxDev := decimal.Zero
	for _, a := range amounts {
		maxDev = decimal.Max(maxDev, a.Sub(avg).Abs())
	}
	variation := maxDev.Div(avg)
	if !lo.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: zero amount among %s..%s", ErrUnstableAmount, lo.StringFixed(2), hi.StringFixed(2))
	}
	variation = decimal.Max(variation, hi.Sub(lo).Div(lo))
	if variation.GreaterThan(maxAmountVariation) {
		return decimal.Zero, fmt.Errorf("%w: %s%% variation", ErrUnstableAmount, variation.Shift(2).StringFixed(1))
	}
	return avg, nil
}

func hasEvidence(g PatternGroup, hints Hints) bool {
	for _, m := range g.Members {
		if m.DeclaredFrequency.Repeats() {
			return true
		}
	}
	return IsKnownRecurring(g.CanonicalKey) || hints.recurring(g.CanonicalKey)
}

// intervals measures the gaps between consecutive members and the billing day
// of every member after the first.
func intervals(members []core.Transaction) (avgInterval float64, avgDay, dayVariation int) {
	n := len(members) - 1
	gapSum, daySum := 0, 0
	for i := 1; i < len(members); i++ {
		gapSum += members[i-1].OccurredOn.DaysUntil(members[i].OccurredOn)
		daySum += members[i].OccurredOn.Day()
	}
	avgInterval = float64(gapSum) / float64(n)
	avgDay = int(math.Round(float64(daySum) / float64(n)))

	for i := 1; i < len(members); i++ {
		d := members[i].OccurredOn.Day() - avgDay
		if d < 0 {
			d = -d
		}
		if d > dayVariation {
			dayVariation = d
		}
	}
	return avgInterval, avgDay, dayVariation
}
