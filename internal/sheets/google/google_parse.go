package google

import (
	"fmt"
	"log/slog"
	"strings"

	"scadenze/internal/core"
)

// firstDataRow is the sheet row of values[0]; row 1 holds the header.
const firstDataRow = 2

// parseRows decodes the A2:F range. Blank rows are ignored; malformed rows
// are logged, counted and dropped.
func parseRows(values [][]interface{}) (txs []core.Transaction, skipped int) {
	txs = make([]core.Transaction, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		t, err := core.ParseTransactionRecord(row)
		if err != nil {
			slog.Warn("Skipping malformed sheet row", "row", i+firstDataRow, "error", err)
			skipped++
			continue
		}
		txs = append(txs, t)
	}
	return txs, skipped
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
