// Package importer decodes transaction exports.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"scadenze/internal/core"
)

// RowError describes a record that could not be decoded.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result is the outcome of ReadCSV.
type Result struct {
	Transactions []core.Transaction
	Skipped      []RowError
}

// ReadCSV decodes id,kind,date,description,amount[,frequency] records. An
// optional header row is ignored. Malformed records are logged and reported in
// Result.Skipped without failing the whole file; only I/O and quoting errors
// are returned.
func ReadCSV(r io.Reader) (Result, error) {
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	seen := make(map[string]int)
	for first := true; ; first = false {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first && core.IsHeaderRecord(fields) {
			continue
		}

		t, err := core.ParseTransactionRecord(fields)
		if err != nil {
			slog.Warn("Skipping malformed transaction record", "line", line, "error", err)
			res.Skipped = append(res.Skipped, RowError{Line: line, Err: err})
			continue
		}
		// Later rows win when an id repeats.
		if i, dup := seen[t.ID]; dup {
			res.Transactions[i] = t
			continue
		}
		seen[t.ID] = len(res.Transactions)
		res.Transactions = append(res.Transactions, t)
	}
	return res, nil
}

// WriteCSV writes transactions in the format ReadCSV accepts, header included.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(core.RecordHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		if err := cw.Write(t.ToRecord()); err != nil {
			return fmt.Errorf("write transaction %q: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
