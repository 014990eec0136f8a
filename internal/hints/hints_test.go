package hints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"scadenze/internal/recurring"
	"scadenze/internal/sheets/memory"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"key":"a"}]`, `[{"key":"a"}]`},
		{"json fence", "```json\n[{\"key\":\"a\"}]\n```", `[{"key":"a"}]`},
		{"bare fence", "```\n[]\n```", `[]`},
		{"chatter", "Here you go:\n[1, 2]\nThanks!", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.in); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt([]string{"netflix", "bar centrale"})
	for _, want := range []string{`["netflix","bar centrale"]`, "subscription", "ride_hailing", "other"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestDecodeHints(t *testing.T) {
	raw := "```json\n" + `[
		{"key": "netflix", "category": "subscription"},
		{"key": "bar centrale", "category": "Dining"},
		{"key": "acme", "category": "groceries"},
		{"key": "not asked", "category": "retail"}
	]` + "\n```"
	got, err := decodeHints(raw, []string{"netflix", "bar centrale", "acme"})
	if err != nil {
		t.Fatalf("decodeHints() error = %v", err)
	}
	want := recurring.Hints{"netflix": recurring.CategorySubscription, "bar centrale": recurring.CategoryDining}
	if len(got) != len(want) {
		t.Fatalf("decodeHints() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("decodeHints()[%q] = %q, want %q", k, got[k], v)
		}
	}

	if _, err := decodeHints("I cannot help with that", nil); err == nil {
		t.Error("expected error for non-JSON answer")
	}
}

func TestGeminiCategorizer_Batches(t *testing.T) {
	var prompts int
	g := &GeminiCategorizer{generate: func(_ context.Context, prompt string) (string, error) {
		prompts++
		return `[{"key":"k000","category":"subscription"}]`, nil
	}}
	keys := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		keys = append(keys, fmt.Sprintf("k%03d", i))
	}
	got, err := g.Categorize(context.Background(), keys)
	if err != nil {
		t.Fatal(err)
	}
	if prompts != 3 {
		t.Errorf("generate called %d times, want 3", prompts)
	}
	if got["k000"] != recurring.CategorySubscription {
		t.Errorf("Categorize() = %v", got)
	}
}

func TestGeminiCategorizer_EmptyAnswer(t *testing.T) {
	g := &GeminiCategorizer{generate: func(context.Context, string) (string, error) { return " ", nil }}
	if _, err := g.Categorize(context.Background(), []string{"netflix"}); err == nil {
		t.Fatal("expected error for empty answer")
	}
}

func TestNewGeminiCategorizer_RequiresKey(t *testing.T) {
	if _, err := NewGeminiCategorizer(context.Background(), "", ""); err == nil {
		t.Fatal("expected error without API key")
	}
}

type stubCategorizer struct {
	asked [][]string
	hints recurring.Hints
	err   error
}

func (s *stubCategorizer) Categorize(_ context.Context, keys []string) (recurring.Hints, error) {
	s.asked = append(s.asked, keys)
	if s.err != nil {
		return nil, s.err
	}
	return s.hints, nil
}

func TestCached_AsksOnlyForUnknownKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.WriteHints(ctx, recurring.Hints{"netflix": recurring.CategorySubscription})

	next := &stubCategorizer{hints: recurring.Hints{"bar centrale": recurring.CategoryDining}}
	c := NewCached(store, next)

	got, err := c.Categorize(ctx, []string{"netflix", "bar centrale", "acme", "acme"})
	if err != nil {
		t.Fatal(err)
	}
	if len(next.asked) != 1 || len(next.asked[0]) != 2 {
		t.Fatalf("categorizer asked %v, want one call for 2 keys", next.asked)
	}
	if got["netflix"] != recurring.CategorySubscription || got["bar centrale"] != recurring.CategoryDining || got["acme"] != recurring.CategoryOther {
		t.Errorf("Categorize() = %v", got)
	}

	// Everything is stored now, including the unplaced key.
	if _, err := c.Categorize(ctx, []string{"netflix", "bar centrale", "acme"}); err != nil {
		t.Fatal(err)
	}
	if len(next.asked) != 1 {
		t.Errorf("categorizer asked again: %v", next.asked)
	}
}

func TestCached_DegradesOnFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.WriteHints(ctx, recurring.Hints{"netflix": recurring.CategorySubscription})
	c := NewCached(store, &stubCategorizer{err: errors.New("quota")})

	got, err := c.Categorize(ctx, []string{"netflix", "acme"})
	if err != nil {
		t.Fatalf("Categorize() error = %v, want degraded result", err)
	}
	if len(got) != 1 || got["netflix"] != recurring.CategorySubscription {
		t.Errorf("Categorize() = %v", got)
	}
	stored, _ := store.ReadHints(ctx)
	if _, ok := stored["acme"]; ok {
		t.Error("failed lookups must not be stored")
	}
}
