// Package google reads the transaction feed from a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"scadenze/internal/cache"
	"scadenze/internal/core"
	ports "scadenze/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const snapshotKey = "snapshot"

// Config selects the sheet and the service account used to read it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	CacheTTL        time.Duration
}

// fetchFunc returns the raw cell values of the transaction range.
type fetchFunc func(ctx context.Context) ([][]interface{}, error)

type Client struct {
	fetch fetchFunc
	cache *cache.LRUCache[[]core.Transaction]
	// serializes refreshes so that concurrent misses issue a single API call
	refresh sync.Mutex
}

var _ ports.TransactionLister = (*Client)(nil)

// New creates a Sheets client authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	rng := fmt.Sprintf("%s!A2:F", cfg.SheetName)
	fetch := func(ctx context.Context) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(cfg.SpreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rng, err)
		}
		return resp.Values, nil
	}

	slog.InfoContext(ctx, "Google Sheets feed ready", "range", rng, "cache_ttl", cfg.CacheTTL)
	return newClient(fetch, cfg.CacheTTL), nil
}

func newClient(fetch fetchFunc, ttl time.Duration) *Client {
	return &Client{
		fetch: fetch,
		cache: cache.NewLRUCache[[]core.Transaction](1, ttl),
	}
}

// newSheetsService initializes a read-only Sheets service from service
// account credentials, inline or from a file.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// ListTransactionsSince implements sheets.TransactionLister. The decoded
// sheet is cached for the configured TTL; filtering happens on the copy.
func (c *Client) ListTransactionsSince(ctx context.Context, since core.Date) ([]core.Transaction, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if !t.OccurredOn.Before(since.Time) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Invalidate drops the cached snapshot so the next read hits the API.
func (c *Client) Invalidate() {
	c.cache.Purge()
}

// CacheCleaner exposes the snapshot cache for periodic sweeping.
func (c *Client) CacheCleaner() cache.Cleaner {
	return c.cache
}

func (c *Client) snapshot(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := c.cache.Get(snapshotKey); ok {
		return txs, nil
	}

	c.refresh.Lock()
	defer c.refresh.Unlock()
	if txs, ok := c.cache.Get(snapshotKey); ok {
		return txs, nil
	}

	values, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	txs, skipped := parseRows(values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed sheet rows", "skipped", skipped, "kept", len(txs))
	}
	c.cache.Set(snapshotKey, txs)
	return txs, nil
}
