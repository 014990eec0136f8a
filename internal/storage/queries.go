package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionExists = `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = ?)`

func (q *Queries) TransactionExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, transactionExists, id).Scan(&exists)
	return exists, err
}

const upsertTransaction = `
INSERT INTO transactions (id, kind, amount_cents, description, occurred_on, declared_frequency)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    kind = excluded.kind,
    amount_cents = excluded.amount_cents,
    description = excluded.description,
    occurred_on = excluded.occurred_on,
    declared_frequency = excluded.declared_frequency,
    updated_at = CURRENT_TIMESTAMP`

type UpsertTransactionParams struct {
	ID                string
	Kind              string
	AmountCents       int64
	Description       string
	OccurredOn        string
	DeclaredFrequency string
}

func (q *Queries) UpsertTransaction(ctx context.Context, arg UpsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID,
		arg.Kind,
		arg.AmountCents,
		arg.Description,
		arg.OccurredOn,
		arg.DeclaredFrequency,
	)
	return err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Rows whose date is not ISO formatted are returned too so the caller can
// report them.
const listTransactionsSince = `
SELECT id, kind, amount_cents, description, occurred_on, declared_frequency
FROM transactions
WHERE occurred_on >= ?
   OR occurred_on NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'
ORDER BY occurred_on, id`

func (q *Queries) ListTransactionsSince(ctx context.Context, since string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsSince, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.AmountCents,
			&i.Description,
			&i.OccurredOn,
			&i.DeclaredFrequency,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransactions = `SELECT COUNT(*) FROM transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countTransactions).Scan(&count)
	return count, err
}

const listCategoryHints = `SELECT canonical_key, category FROM category_hints ORDER BY canonical_key`

func (q *Queries) ListCategoryHints(ctx context.Context) ([]CategoryHint, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryHints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryHint
	for rows.Next() {
		var i CategoryHint
		if err := rows.Scan(&i.CanonicalKey, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertCategoryHint = `
INSERT INTO category_hints (canonical_key, category)
VALUES (?, ?)
ON CONFLICT (canonical_key) DO UPDATE SET
    category = excluded.category,
    updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertCategoryHint(ctx context.Context, canonicalKey, category string) error {
	_, err := q.db.ExecContext(ctx, upsertCategoryHint, canonicalKey, category)
	return err
}
