package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "scadenze/internal/sheets/google"
	"scadenze/internal/sheets/memory"
	"scadenze/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateFeed implements Factory.CreateFeed
func (f *DefaultFactory) CreateFeed(ctx context.Context, config Config) (*Feed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteFeed(ctx, config)
	case SheetsBackend:
		return f.createSheetsFeed(ctx, config)
	case MemoryBackend:
		return f.createMemoryFeed(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteFeed(ctx context.Context, config Config) (*Feed, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Feed{
		Lister:  repo,
		Writer:  repo,
		Hints:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsFeed(ctx context.Context, config Config) (*Feed, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
		CacheTTL:        config.SheetsCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets backend", "sheet", config.GoogleSheetName)

	// The sheet is read-only; hints live for the life of the process.
	return &Feed{
		Lister:  cli,
		Hints:   memory.New(),
		Cleaner: cli.CacheCleaner(),
	}, nil
}

func (f *DefaultFactory) createMemoryFeed(ctx context.Context, config Config) (*Feed, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"data_directory", dataDir,
		"transactions", store.Len())

	return &Feed{
		Lister: store,
		Writer: store,
		Hints:  store,
	}, nil
}
