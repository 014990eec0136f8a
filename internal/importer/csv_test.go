package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"scadenze/internal/core"
)

const sample = `id,kind,date,description,amount,frequency
# exported from the bank
n1,expense,2023-10-14,Netflix Oct,"219,00",monthly
n2,expense,2023-11-14,Netflix Nov,219.00
bad,expense,14/12/2023,Netflix Dec,219
s1,income,2023-11-27,Salary,2500
n2,expense,2023-11-14,Netflix Nov,220.00
`

func TestReadCSV(t *testing.T) {
	res, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("ReadCSV() returned %d transactions, want 3: %+v", len(res.Transactions), res.Transactions)
	}
	if res.Transactions[0].DeclaredFrequency != core.Monthly || res.Transactions[0].Amount.Cents != 21900 {
		t.Errorf("first transaction = %+v", res.Transactions[0])
	}
	if res.Transactions[1].ID != "n2" || res.Transactions[1].Amount.Cents != 22000 {
		t.Errorf("duplicate id should keep the last row, got %+v", res.Transactions[1])
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Line != 5 || !errors.Is(res.Skipped[0], core.ErrInvalidDate) {
		t.Errorf("Skipped = %+v", res.Skipped)
	}
}

func TestReadCSV_QuotingError(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,\"b\n")); err == nil {
		t.Fatal("expected error for broken quoting")
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	in := []core.Transaction{{
		ID: "x", Kind: core.Expense, Amount: core.Money{Cents: 1099}, Description: "Spotify, family",
		OccurredOn: core.NewDate(2024, 2, 2), DeclaredFrequency: core.Monthly,
	}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	res, err := ReadCSV(&buf)
	if err != nil || len(res.Transactions) != 1 || res.Transactions[0] != in[0] {
		t.Fatalf("round trip = %+v, %v", res.Transactions, err)
	}
}
