// Package backend builds the transaction feed selected by configuration.
package backend

import (
	"context"
	"time"

	"scadenze/internal/cache"
	"scadenze/internal/sheets"
)

// CleanupFunc releases the resources held by a feed.
type CleanupFunc func() error

// Feed is what the forecasting side needs from a backend.
type Feed struct {
	Lister sheets.TransactionLister
	// Writer is nil for read-only feeds.
	Writer sheets.TransactionWriter
	Hints  sheets.HintStore
	// Cleaner is set when the feed keeps an expiring cache.
	Cleaner cache.Cleaner
	Cleanup CleanupFunc
}

// Close runs Cleanup when present.
func (f *Feed) Close() error {
	if f == nil || f.Cleanup == nil {
		return nil
	}
	return f.Cleanup()
}

// Factory creates feeds based on configuration.
type Factory interface {
	CreateFeed(ctx context.Context, config Config) (*Feed, error)
}

// Config holds configuration for feed creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	SheetsCacheTTL        time.Duration

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
