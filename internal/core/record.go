package core

import (
	"fmt"
	"strings"
)

// Record column order shared by the CSV importer, the memory feed and the
// Google Sheets feed: id, kind, date, description, amount, frequency.
const (
	ColID = iota
	ColKind
	ColDate
	ColDescription
	ColAmount
	ColFrequency
)

// RecordHeader is the header row written and accepted by CSV files.
var RecordHeader = []string{"id", "kind", "date", "description", "amount", "frequency"}

// ParseTransactionRecord decodes one row. The frequency column is optional.
// Any malformed field fails the whole row so callers can drop it.
func ParseTransactionRecord(fields []string) (Transaction, error) {
	if len(fields) < ColFrequency {
		return Transaction{}, fmt.Errorf("expected at least %d columns, got %d", ColFrequency, len(fields))
	}
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	date, err := ParseDate(get(ColDate))
	if err != nil {
		return Transaction{}, fmt.Errorf("date %q: %w", get(ColDate), err)
	}
	cents, err := ParseDecimalToCents(get(ColAmount))
	if err != nil {
		return Transaction{}, fmt.Errorf("amount %q: %w", get(ColAmount), err)
	}
	freq, err := ParseFrequency(get(ColFrequency))
	if err != nil {
		return Transaction{}, fmt.Errorf("frequency %q: %w", get(ColFrequency), err)
	}

	t := Transaction{
		ID:                get(ColID),
		Kind:              Kind(strings.ToLower(get(ColKind))),
		Amount:            Money{Cents: cents},
		Description:       get(ColDescription),
		OccurredOn:        date,
		DeclaredFrequency: freq,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// IsHeaderRecord reports whether fields look like RecordHeader.
func IsHeaderRecord(fields []string) bool {
	if len(fields) <= ColDate {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(fields[ColID]), RecordHeader[ColID]) &&
		strings.EqualFold(strings.TrimSpace(fields[ColDate]), RecordHeader[ColDate])
}

// ToRecord is the inverse of ParseTransactionRecord.
func (t Transaction) ToRecord() []string {
	return []string{t.ID, string(t.Kind), t.OccurredOn.String(), t.Description, t.Amount.String(), string(t.DeclaredFrequency)}
}
