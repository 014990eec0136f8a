package recurring

import (
	"log/slog"
	"sort"

	"scadenze/internal/core"
)

// MinOccurrences is the smallest group that can carry a cadence: two points
// give an interval, the third confirms it repeats.
const MinOccurrences = 3

// PatternGroup is the set of expenses sharing a canonical key, oldest first.
type PatternGroup struct {
	CanonicalKey string
	Members      []core.Transaction
}

// Last returns the most recent member.
func (g PatternGroup) Last() core.Transaction {
	return g.Members[len(g.Members)-1]
}

// Group buckets expense transactions by canonical key. See GroupWithHints.
func Group(txs []core.Transaction) []PatternGroup {
	return GroupWithHints(txs, nil)
}

// GroupWithHints buckets expense transactions by canonical key, dropping
// undated transactions, variable-spend merchants (by name or by hint) and
// groups smaller than MinOccurrences. Groups come back in the order their key
// was first seen; members are sorted by date, keeping input order on ties.
func GroupWithHints(txs []core.Transaction, hints Hints) []PatternGroup {
	buckets := make(map[string]*PatternGroup)
	var order []string

	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		if tx.OccurredOn.IsZero() {
			slog.Warn("Dropping transaction without a valid date", "id", tx.ID, "description", tx.Description)
			continue
		}
		key := Normalize(tx.Description)
		if key == "" || IsVariableSpend(key) || hints.variable(key) {
			continue
		}
		g, ok := buckets[key]
		if !ok {
			g = &PatternGroup{CanonicalKey: key}
			buckets[key] = g
			order = append(order, key)
		}
		g.Members = append(g.Members, tx)
	}

	groups := make([]PatternGroup, 0, len(order))
	for _, key := range order {
		g := buckets[key]
		if len(g.Members) < MinOccurrences {
			continue
		}
		sort.SliceStable(g.Members, func(i, j int) bool {
			return g.Members[i].OccurredOn.Before(g.Members[j].OccurredOn.Time)
		})
		groups = append(groups, *g)
	}
	return groups
}
