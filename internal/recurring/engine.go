package recurring

import (
	"log/slog"
	"sort"

	"scadenze/internal/core"
)

// Evaluation is the classification outcome of one group. Exactly one of
// Profile and Err is meaningful.
type Evaluation struct {
	Group   PatternGroup
	Profile Profile
	Err     error
}

// Evaluate classifies every group, keeping the rejection reasons.
func Evaluate(groups []PatternGroup, hints Hints) []Evaluation {
	out := make([]Evaluation, 0, len(groups))
	for _, g := range groups {
		p, err := Classify(g, hints)
		out = append(out, Evaluation{Group: g, Profile: p, Err: err})
	}
	return out
}

// Assemble classifies, forecasts and scores every group and returns all the
// predicted events sorted by date. Events on the same date keep group order.
// The returned slice is owned by the caller.
func Assemble(groups []PatternGroup, today core.Date, opts Options) []PredictedEvent {
	events := make([]PredictedEvent, 0)
	for _, ev := range Evaluate(groups, opts.Hints) {
		if ev.Err != nil {
			slog.Debug("Pattern rejected", "canonical_key", ev.Group.CanonicalKey, "reason", ev.Err)
			continue
		}
		events = append(events, Forecast(ev.Profile, today, opts)...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date.Time)
	})
	return events
}

// Detect runs the whole pipeline over a transaction snapshot. The caller
// chooses the lookback window; no date filtering happens here.
func Detect(txs []core.Transaction, today core.Date, opts Options) []PredictedEvent {
	return Assemble(GroupWithHints(txs, opts.Hints), today, opts)
}

