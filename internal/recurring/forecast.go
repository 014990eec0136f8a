package recurring

import (
	"fmt"

	"scadenze/internal/core"
)

// Forecast defaults.
const (
	DefaultHorizonMonths  = 3
	DefaultMaxOccurrences = 3
)

// Options tunes a detection run. Zero values fall back to the defaults.
type Options struct {
	HorizonMonths  int
	MaxOccurrences int
	Hints          Hints
}

func (o Options) withDefaults() Options {
	if o.HorizonMonths <= 0 {
		o.HorizonMonths = DefaultHorizonMonths
	}
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = DefaultMaxOccurrences
	}
	return o
}

// PredictedEvent is one projected occurrence of a recurring expense.
type PredictedEvent struct {
	Date         core.Date
	Kind         core.Kind
	Label        string
	Amount       core.Money
	Risk         Risk
	Cadence      Cadence
	CanonicalKey string
}

// Forecast projects p forward from its last occurrence. Only dates in
// [today, today+HorizonMonths) are emitted, at most MaxOccurrences of them;
// earlier steps are walked through without being counted.
func Forecast(p Profile, today core.Date, opts Options) []PredictedEvent {
	opts = opts.withDefaults()
	stepper, err := GetStepper(p.Cadence)
	if err != nil {
		return nil
	}

	end := today.AddMonths(opts.HorizonMonths)
	label := fmt.Sprintf("%s (%s)", p.Label, p.Cadence)

	var events []PredictedEvent
	for next := stepper.Next(p.LastOccurrence, p); next.Before(end.Time) && len(events) < opts.MaxOccurrences; next = stepper.Next(next, p) {
		if next.Before(today.Time) {
			continue
		}
		events = append(events, PredictedEvent{
			Date:         next,
			Kind:         core.Expense,
			Label:        label,
			Amount:       p.Amount,
			Risk:         Score(next, p.Amount, today),
			Cadence:      p.Cadence,
			CanonicalKey: p.CanonicalKey,
		})
	}
	return events
}
