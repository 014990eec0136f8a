package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scadenze/internal/config"
	"scadenze/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory", MemoryDataDir: "/tmp/seed"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != MemoryBackend || got.DataDirectory != "/tmp/seed" {
		t.Errorf("FromAppConfig() = %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("FromAppConfig() should reject unknown backends")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without credentials", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "T"}, true},
		{"sheets ok", Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "T", GoogleCredentialsJSON: "{}"}, false},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateFeed_Memory(t *testing.T) {
	dir := t.TempDir()
	seed := "id,kind,date,description,amount,frequency\n" +
		"t1,expense,2024-01-05,Netflix,15.00,monthly\n"
	if err := os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	feed, err := NewFactory(nil).CreateFeed(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer feed.Close()

	if feed.Writer == nil || feed.Hints == nil {
		t.Error("memory feed should be writable and store hints")
	}
	txs, err := feed.Lister.ListTransactionsSince(context.Background(), core.NewDate(2024, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].ID != "t1" {
		t.Errorf("ListTransactionsSince() = %+v", txs)
	}
}

func TestCreateFeed_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.db")
	feed, err := NewFactory(nil).CreateFeed(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer feed.Close()

	ctx := context.Background()
	tx := core.Transaction{
		ID:          "t1",
		Kind:        core.Expense,
		Amount:      core.FromUnits(15),
		Description: "Netflix",
		OccurredOn:  core.NewDate(2024, 1, 5),
	}
	if _, err := feed.Writer.UpsertTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	txs, err := feed.Lister.ListTransactionsSince(ctx, core.NewDate(2024, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Errorf("ListTransactionsSince() returned %d transactions, want 1", len(txs))
	}
}

func TestFeed_CloseNil(t *testing.T) {
	var f *Feed
	if err := f.Close(); err != nil {
		t.Errorf("Close() on nil feed = %v", err)
	}
}
