package recurring

import (
	"fmt"
	"strings"

	"scadenze/internal/core"
)

// Risk is how urgent a predicted obligation is.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

const (
	highRiskDays    = 3
	highRiskCents   = 1000_00
	mediumRiskDays  = 7
	mediumRiskCents = 500_00
)

// Score rates an obligation by proximity and size: high when it is at most
// 3 days away and above 1000, medium when at most 7 days away and above 500.
func Score(eventDate core.Date, amount core.Money, today core.Date) Risk {
	days := today.DaysUntil(eventDate)
	switch {
	case days <= highRiskDays && amount.Cents > highRiskCents:
		return RiskHigh
	case days <= mediumRiskDays && amount.Cents > mediumRiskCents:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParseRisk parses a risk tier name.
func ParseRisk(s string) (Risk, error) {
	r := Risk(strings.ToLower(strings.TrimSpace(s)))
	if r.rank() < 0 {
		return "", fmt.Errorf("invalid risk %q", s)
	}
	return r, nil
}

// AtLeast reports whether r is as severe as floor or more.
func (r Risk) AtLeast(floor Risk) bool {
	return r.rank() >= floor.rank()
}

func (r Risk) rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return -1
}
