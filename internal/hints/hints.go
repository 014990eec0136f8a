// Package hints asks an external model to categorize merchants so the
// detection engine can tell obligations from discretionary spend.
package hints

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"scadenze/internal/recurring"
	"scadenze/internal/sheets"
)

// Categorizer assigns a category to canonical keys. Keys it cannot place
// are left out of the result.
type Categorizer interface {
	Categorize(ctx context.Context, keys []string) (recurring.Hints, error)
}

// Cached consults a hint store before asking the wrapped categorizer, and
// stores whatever the categorizer returns.
type Cached struct {
	store sheets.HintStore
	next  Categorizer
}

func NewCached(store sheets.HintStore, next Categorizer) *Cached {
	return &Cached{store: store, next: next}
}

// Categorize returns the stored hints for keys, asking the wrapped
// categorizer only for the keys never seen before. A failing categorizer
// degrades to the stored hints.
func (c *Cached) Categorize(ctx context.Context, keys []string) (recurring.Hints, error) {
	stored, err := c.store.ReadHints(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stored hints: %w", err)
	}

	out := make(recurring.Hints, len(keys))
	var missing []string
	for _, k := range dedupe(keys) {
		if cat, ok := stored[k]; ok {
			out[k] = cat
			continue
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 || c.next == nil {
		return out, nil
	}

	fresh, err := c.next.Categorize(ctx, missing)
	if err != nil {
		slog.WarnContext(ctx, "Categorization failed, using stored hints only",
			"missing", len(missing),
			"error", err)
		return out, nil
	}

	// Keys the model could not place are stored as "other" so they are not
	// asked about again.
	toStore := make(recurring.Hints, len(missing))
	for _, k := range missing {
		cat, ok := fresh[k]
		if !ok {
			cat = recurring.CategoryOther
		}
		toStore[k] = cat
		out[k] = cat
	}
	if err := c.store.WriteHints(ctx, toStore); err != nil {
		slog.WarnContext(ctx, "Cannot store categorization hints", "error", err)
	}

	slog.InfoContext(ctx, "Merchants categorized", "asked", len(missing), "placed", len(fresh))
	return out, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
