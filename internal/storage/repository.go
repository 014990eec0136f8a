package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"scadenze/internal/core"
	"scadenze/internal/recurring"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertTransaction implements sheets.TransactionWriter
func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("validate transaction %q: %w", t.ID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	exists, err := q.TransactionExists(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("check transaction %q: %w", t.ID, err)
	}
	if err := q.UpsertTransaction(ctx, toParams(t)); err != nil {
		return false, fmt.Errorf("upsert transaction %q: %w", t.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"created", !exists,
		"amount_cents", t.Amount.Cents,
		"occurred_on", t.OccurredOn.String())

	return !exists, nil
}

// ImportResult counts the outcome of ImportTransactions.
type ImportResult struct {
	Created int
	Updated int
}

// ImportTransactions upserts a batch in a single database transaction. Either
// every record is stored or none is. The per-record outcome is reported
// through onStored, which may be nil.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, txs []core.Transaction, onStored func(t core.Transaction, created bool)) (ImportResult, error) {
	var res ImportResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	created := make([]bool, len(txs))
	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("validate transaction %q: %w", t.ID, err)
		}
		exists, err := q.TransactionExists(ctx, t.ID)
		if err != nil {
			return ImportResult{}, fmt.Errorf("check transaction %q: %w", t.ID, err)
		}
		if err := q.UpsertTransaction(ctx, toParams(t)); err != nil {
			return ImportResult{}, fmt.Errorf("upsert transaction %q: %w", t.ID, err)
		}
		created[i] = !exists
		if exists {
			res.Updated++
		} else {
			res.Created++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}

	if onStored != nil {
		for i, t := range txs {
			onStored(t, created[i])
		}
	}

	slog.InfoContext(ctx, "Transactions imported into SQLite", "created", res.Created, "updated", res.Updated)
	return res, nil
}

// DeleteTransaction implements sheets.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction %q: %w", id, err)
	}
	return n > 0, nil
}

// ListTransactionsSince implements sheets.TransactionLister
func (r *SQLiteRepository) ListTransactionsSince(ctx context.Context, since core.Date) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsSince(ctx, since.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions since %s: %w", since, err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed transaction row",
				"id", row.ID,
				"occurred_on", row.OccurredOn,
				"error", err)
			continue
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// CountTransactions returns the number of stored transactions.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ReadHints implements sheets.HintReader
func (r *SQLiteRepository) ReadHints(ctx context.Context) (recurring.Hints, error) {
	rows, err := r.queries.ListCategoryHints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list category hints: %w", err)
	}

	hints := make(recurring.Hints, len(rows))
	for _, row := range rows {
		c, ok := recurring.ParseCategory(row.Category)
		if !ok {
			slog.WarnContext(ctx, "Ignoring unknown hint category", "canonical_key", row.CanonicalKey, "category", row.Category)
			continue
		}
		hints[row.CanonicalKey] = c
	}
	return hints, nil
}

// WriteHints implements sheets.HintWriter
func (r *SQLiteRepository) WriteHints(ctx context.Context, hints recurring.Hints) error {
	if len(hints) == 0 {
		return nil
	}

	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for _, k := range keys {
		if err := q.UpsertCategoryHint(ctx, k, string(hints[k])); err != nil {
			return fmt.Errorf("upsert hint %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hints: %w", err)
	}

	slog.DebugContext(ctx, "Category hints stored", "count", len(keys))
	return nil
}

func toParams(t core.Transaction) UpsertTransactionParams {
	return UpsertTransactionParams{
		ID:                t.ID,
		Kind:              string(t.Kind),
		AmountCents:       t.Amount.Cents,
		Description:       t.Description,
		OccurredOn:        t.OccurredOn.String(),
		DeclaredFrequency: string(t.DeclaredFrequency),
	}
}

func fromRow(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.OccurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("occurred_on: %w", err)
	}
	freq, err := core.ParseFrequency(row.DeclaredFrequency)
	if err != nil {
		freq = core.FrequencyNone
	}
	t := core.Transaction{
		ID:                row.ID,
		Kind:              core.Kind(row.Kind),
		Amount:            core.Money{Cents: row.AmountCents},
		Description:       row.Description,
		OccurredOn:        date,
		DeclaredFrequency: freq,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
