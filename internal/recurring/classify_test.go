package recurring

import (
	"errors"
	"testing"

	"scadenze/internal/core"
)

func monthlyGroup(key string, days []core.Date, cents ...int64) PatternGroup {
	g := PatternGroup{CanonicalKey: key}
	for i, d := range days {
		g.Members = append(g.Members, expense(key, d, cents[i%len(cents)]))
	}
	return g
}

var threeMonths = []core.Date{
	core.NewDate(2024, 1, 10),
	core.NewDate(2024, 2, 10),
	core.NewDate(2024, 3, 10),
}

func TestClassify_AmountStability(t *testing.T) {
	tests := []struct {
		name    string
		cents   []int64
		wantErr error
		want    int64
	}{
		{"21 percent spread rejected", []int64{10000, 10000, 12100}, ErrUnstableAmount, 0},
		{"19 percent spread accepted", []int64{10000, 10000, 11900}, nil, 10600},
		{"20 percent spread accepted", []int64{10000, 10000, 12000}, nil, 10700},
		// Within 15% of the mean, but the highest is 35% above the lowest.
		{"wide spread around a stable mean rejected", []int64{8500, 10000, 11500}, ErrUnstableAmount, 0},
		{"identical amounts", []int64{21900, 21900, 21900}, nil, 21900},
		{"all zero", []int64{0, 0, 0}, ErrNoAmount, 0},
		{"one zero", []int64{0, 1000, 1000}, ErrUnstableAmount, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Classify(monthlyGroup("netflix", threeMonths, tt.cents...), nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Classify() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && p.Amount.Cents != tt.want {
				t.Errorf("Classify() amount = %d, want %d", p.Amount.Cents, tt.want)
			}
		})
	}
}

func TestClassify_Evidence(t *testing.T) {
	g := monthlyGroup("acme widgets", threeMonths, 4999)
	if _, err := Classify(g, nil); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("Classify() error = %v, want ErrNoEvidence", err)
	}

	if _, err := Classify(g, Hints{"acme widgets": CategorySubscription}); err != nil {
		t.Errorf("recurring hint should count as evidence, got %v", err)
	}
	if _, err := Classify(g, Hints{"acme widgets": CategoryRetail}); !errors.Is(err, ErrNoEvidence) {
		t.Errorf("non-recurring hint should not count as evidence, got %v", err)
	}

	declared := monthlyGroup("acme widgets", threeMonths, 4999)
	declared.Members[1].DeclaredFrequency = core.Monthly
	if _, err := Classify(declared, nil); err != nil {
		t.Errorf("declared frequency should count as evidence, got %v", err)
	}

	once := monthlyGroup("acme widgets", threeMonths, 4999)
	for i := range once.Members {
		once.Members[i].DeclaredFrequency = core.Once
	}
	if _, err := Classify(once, nil); !errors.Is(err, ErrNoEvidence) {
		t.Errorf("'once' must not count as evidence, got %v", err)
	}
}

func TestClassify_DayOfMonthGuard(t *testing.T) {
	// 5, 5, 20 of consecutive months: never forecast.
	drifting := monthlyGroup("netflix", []core.Date{
		core.NewDate(2024, 1, 5),
		core.NewDate(2024, 2, 5),
		core.NewDate(2024, 3, 20),
	}, 1500)
	if _, err := Classify(drifting, nil); err == nil {
		t.Fatal("expected drifting pattern to be rejected")
	}

	// Monthly on average (26 days) but the billing day moves by 4.
	drift := monthlyGroup("netflix", []core.Date{
		core.NewDate(2024, 1, 20),
		core.NewDate(2024, 2, 20),
		core.NewDate(2024, 3, 12),
	}, 1500)
	if _, err := Classify(drift, nil); !errors.Is(err, ErrDayDrift) {
		t.Fatalf("Classify() error = %v, want ErrDayDrift", err)
	}

	// A 3 day wobble is tolerated.
	wobble := monthlyGroup("netflix", []core.Date{
		core.NewDate(2024, 1, 14),
		core.NewDate(2024, 2, 11),
		core.NewDate(2024, 3, 14),
	}, 1500)
	p, err := Classify(wobble, nil)
	if err != nil {
		t.Fatalf("Classify() error = %v, want nil", err)
	}
	if p.DayOfMonth != 13 {
		t.Errorf("DayOfMonth = %d, want 13", p.DayOfMonth)
	}
}

func TestClassify_Cadence(t *testing.T) {
	tests := []struct {
		name    string
		dates   []core.Date
		want    Cadence
		wantErr error
	}{
		{
			name:  "monthly",
			dates: threeMonths,
			want:  CadenceMonthly,
		},
		{
			name: "annual",
			dates: []core.Date{
				core.NewDate(2022, 3, 1),
				core.NewDate(2023, 3, 1),
				core.NewDate(2024, 3, 1),
			},
			want: CadenceAnnual,
		},
		{
			name: "weekly is not forecast",
			dates: []core.Date{
				core.NewDate(2024, 1, 1),
				core.NewDate(2024, 1, 8),
				core.NewDate(2024, 1, 15),
			},
			wantErr: ErrIrregular,
		},
		{
			name: "quarterly is not forecast",
			dates: []core.Date{
				core.NewDate(2024, 1, 1),
				core.NewDate(2024, 4, 1),
				core.NewDate(2024, 7, 1),
			},
			wantErr: ErrIrregular,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Classify(monthlyGroup("spotify", tt.dates, 999), nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Classify() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && p.Cadence != tt.want {
				t.Errorf("Cadence = %q, want %q", p.Cadence, tt.want)
			}
			if err != nil && p != (Profile{}) {
				t.Errorf("rejected group returned a non-empty profile: %+v", p)
			}
		})
	}
}

func TestClassify_Profile(t *testing.T) {
	groups := Group(netflix(21900))
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	p, err := Classify(groups[0], nil)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := Profile{
		CanonicalKey:   "netflix",
		Label:          "Netflix",
		Cadence:        CadenceMonthly,
		Amount:         core.Money{Cents: 21900},
		DayOfMonth:     14,
		LastOccurrence: core.NewDate(2024, 1, 14),
		Occurrences:    4,
	}
	if p != want {
		t.Errorf("Classify() = %+v, want %+v", p, want)
	}
}

func TestClassify_TooFewMembers(t *testing.T) {
	g := monthlyGroup("netflix", threeMonths[:2], 1000)
	if _, err := Classify(g, nil); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("Classify() error = %v, want ErrNoEvidence", err)
	}
}
