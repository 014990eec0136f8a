package recurring

import (
	"fmt"

	"scadenze/internal/core"
)

// Step lengths in days.
const (
	monthlyStepDays = 30
	annualStepDays  = 365
)

// Stepper advances a recurring pattern from one occurrence to the next.
// Each cadence has its own implementation.
type Stepper interface {
	// Next returns the occurrence following from. It must be strictly later.
	Next(from core.Date, p Profile) core.Date
}

// MonthlyStepper moves 30 days forward and snaps to the billing day.
type MonthlyStepper struct{}

func (MonthlyStepper) Next(from core.Date, p Profile) core.Date {
	return SnapToDay(from.AddDays(monthlyStepDays), p.DayOfMonth)
}

// AnnualStepper moves 365 days forward.
type AnnualStepper struct{}

func (AnnualStepper) Next(from core.Date, _ Profile) core.Date {
	return from.AddDays(annualStepDays)
}

// steppers maps cadences to their stepping strategy. It is never written
// after package initialization.
var steppers = map[Cadence]Stepper{
	CadenceMonthly: MonthlyStepper{},
	CadenceAnnual:  AnnualStepper{},
}

// GetStepper returns the stepper registered for a cadence.
func GetStepper(c Cadence) (Stepper, error) {
	s, ok := steppers[c]
	if !ok {
		return nil, fmt.Errorf("unsupported cadence: %s", c)
	}
	return s, nil
}

// SnapToDay moves candidate onto the given day of its month, clamped to the
// month's last day. When that lands before candidate the next month's billing
// day is used instead, so the result is never earlier than candidate.
func SnapToDay(candidate core.Date, day int) core.Date {
	if day < 1 {
		return candidate
	}

	snapped := core.WithDay(candidate.Year(), candidate.Month(), day)
	if !snapped.Before(candidate.Time) {
		return snapped
	}
	next := core.NewDate(candidate.Year(), candidate.Month()+1, 1)
	return core.WithDay(next.Year(), next.Month(), day)
}
