// Package sheets defines the ports the forecasting side uses to reach
// transaction feeds and the categorization hint store.
package sheets

import (
	"context"

	"scadenze/internal/core"
	"scadenze/internal/recurring"
)

// Ports for outbound adapters.
type (
	// TransactionLister is the read-only transaction feed.
	TransactionLister interface {
		// ListTransactionsSince returns every transaction dated on or after since.
		// Records that cannot be decoded are logged and skipped.
		ListTransactionsSince(ctx context.Context, since core.Date) ([]core.Transaction, error)
	}

	// TransactionWriter is implemented by feeds that accept imports.
	TransactionWriter interface {
		// UpsertTransaction stores t, reporting whether it was new.
		UpsertTransaction(ctx context.Context, t core.Transaction) (created bool, err error)
		// DeleteTransaction removes a transaction, reporting whether it existed.
		DeleteTransaction(ctx context.Context, id string) (found bool, err error)
	}

	// HintReader returns previously stored categorization hints.
	HintReader interface {
		ReadHints(ctx context.Context) (recurring.Hints, error)
	}

	// HintWriter stores categorization hints, replacing existing keys.
	HintWriter interface {
		WriteHints(ctx context.Context, hints recurring.Hints) error
	}

	// HintStore combines HintReader and HintWriter.
	HintStore interface {
		HintReader
		HintWriter
	}
)
