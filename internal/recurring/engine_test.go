package recurring

import (
	"encoding/json"
	"testing"

	"scadenze/internal/core"
)

func TestDetect_NetflixEndToEnd(t *testing.T) {
	today := core.NewDate(2024, 1, 14).AddDays(20)

	events := Detect(netflix(21900), today, Options{HorizonMonths: 1})
	if len(events) != 1 {
		t.Fatalf("Detect() returned %d events, want 1: %+v", len(events), events)
	}
	e := events[0]
	if e.Date != core.NewDate(2024, 2, 14) {
		t.Errorf("Date = %v, want 2024-02-14", e.Date)
	}
	if e.Amount.Cents != 21900 || e.Cadence != CadenceMonthly || e.Risk != RiskLow || e.Kind != core.Expense {
		t.Errorf("unexpected event: %+v", e)
	}

	// Default horizon ends May 3. Mar 15 is past the 14th, so March rolls to April.
	events = Detect(netflix(21900), today, Options{})
	if len(events) != 2 {
		t.Fatalf("Detect() returned %d events, want 2: %+v", len(events), events)
	}
	for _, e := range events {
		if e.Date.Day() != 14 {
			t.Errorf("event on %v, want the 14th", e.Date)
		}
	}
}

func TestDetect_RiskNearDueDate(t *testing.T) {
	today := core.NewDate(2024, 2, 10)
	events := Detect(netflix(60000), today, Options{HorizonMonths: 1})
	if len(events) != 1 || events[0].Risk != RiskMedium {
		t.Fatalf("expected one medium risk event, got %+v", events)
	}
}

func TestDetect_StarbucksExcluded(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 6; i++ {
		tx := expense("Starbucks", core.NewDate(2024, 1, 1).AddDays(7*i), 1200)
		tx.DeclaredFrequency = core.Weekly
		txs = append(txs, tx)
	}
	if got := Detect(txs, core.NewDate(2024, 2, 20), Options{}); len(got) != 0 {
		t.Fatalf("Detect() = %+v, want no events", got)
	}
}

func TestDetect_MinimumEvidence(t *testing.T) {
	txs := netflix(21900)[2:]
	if got := Detect(txs, core.NewDate(2024, 2, 3), Options{}); len(got) != 0 {
		t.Fatalf("Detect() = %+v, want no events for two occurrences", got)
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	got := Detect(nil, core.NewDate(2024, 2, 3), Options{})
	if got == nil || len(got) != 0 {
		t.Fatalf("Detect(nil) = %#v, want empty slice", got)
	}
}

func TestDetect_AnnualAndMonthly(t *testing.T) {
	txs := append(netflix(1599),
		expense("Amazon Prime 2022", core.NewDate(2022, 3, 1), 4990),
		expense("Amazon Prime 2023", core.NewDate(2023, 3, 1), 4990),
		expense("Amazon Prime 2024", core.NewDate(2024, 2, 29), 4990),
	)
	today := core.NewDate(2025, 1, 20)
	events := Detect(txs, today, Options{HorizonMonths: 3})

	var annual, monthly int
	for _, e := range events {
		switch e.Cadence {
		case CadenceAnnual:
			annual++
			if e.Date != core.NewDate(2025, 2, 28) {
				t.Errorf("annual event on %v, want 2025-02-28", e.Date)
			}
			if e.Label != "Amazon Prime (annual)" {
				t.Errorf("annual label = %q", e.Label)
			}
		case CadenceMonthly:
			monthly++
		}
	}
	// Monthly: Feb 14, then Feb 14 + 30 days is Mar 16, which rolls to Apr 14.
	if annual != 1 || monthly != 2 {
		t.Fatalf("got %d annual and %d monthly events, want 1 and 2", annual, monthly)
	}
}

func TestAssemble_SortedByDate(t *testing.T) {
	rent := []core.Transaction{
		expense("Affitto", core.NewDate(2023, 11, 1), 90000),
		expense("Affitto", core.NewDate(2023, 12, 1), 90000),
		expense("Affitto", core.NewDate(2024, 1, 1), 90000),
	}
	gym := []core.Transaction{
		expense("Palestra", core.NewDate(2023, 11, 1), 4500),
		expense("Palestra", core.NewDate(2023, 12, 1), 4500),
		expense("Palestra", core.NewDate(2024, 1, 1), 4500),
	}
	txs := append(append(netflix(21900), rent...), gym...)
	today := core.NewDate(2024, 1, 28)

	events := Detect(txs, today, Options{})
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date.Time) {
			t.Fatalf("events not sorted: %v before %v", events[i-1].Date, events[i].Date)
		}
	}
	if len(events) < 3 {
		t.Fatalf("expected events from all groups, got %d", len(events))
	}
	// Rent and gym share a date; group order (rent first) breaks the tie.
	if events[0].CanonicalKey != "affitto" || events[1].CanonicalKey != "palestra" {
		t.Errorf("tie order = %q, %q; want affitto, palestra", events[0].CanonicalKey, events[1].CanonicalKey)
	}
	// 900 due in 4 days.
	if events[0].Risk != RiskMedium {
		t.Errorf("rent on %v risk = %v, want medium", events[0].Date, events[0].Risk)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	txs := append(netflix(21900),
		expense("Enel Energia 0001", core.NewDate(2023, 12, 3), 8450),
		expense("Enel Energia 0002", core.NewDate(2024, 1, 3), 9120),
		expense("Enel Energia 0003", core.NewDate(2024, 2, 2), 8800),
		expense("Starbucks", core.NewDate(2024, 1, 3), 450),
	)
	today := core.NewDate(2024, 2, 5)

	first, err := json.Marshal(Detect(txs, today, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Detect(txs, today, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("outputs differ:\n%s\n%s", first, second)
	}
}

func TestEvaluate_KeepsReasons(t *testing.T) {
	txs := append(netflix(21900),
		expense("Acme Widgets", core.NewDate(2023, 12, 3), 1000),
		expense("Acme Widgets", core.NewDate(2024, 1, 3), 1000),
		expense("Acme Widgets", core.NewDate(2024, 2, 3), 1000),
	)
	evals := Evaluate(Group(txs), nil)
	if len(evals) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(evals))
	}
	if evals[0].Err != nil || evals[0].Profile.CanonicalKey != "netflix" {
		t.Errorf("netflix evaluation = %+v", evals[0])
	}
	if evals[1].Err == nil {
		t.Errorf("acme widgets should be rejected")
	}
}
