package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scadenze/internal/amqp"
	"scadenze/internal/cli"
	"scadenze/internal/core"
	"scadenze/internal/importer"
	"scadenze/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a transaction CSV into SQLite",
	Long: "Import id,kind,date,description,amount[,frequency] records into the SQLite store.\n" +
		"Existing ids are updated. When AMQP is configured a change notification is published per record.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, nil)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	parsed, err := importer.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	repo, err := storage.NewSQLiteRepository(env.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	client := cli.ConnectAMQP(env.ctx, env.logger, env.cfg)
	if client != nil {
		defer client.Close()
	}

	var published, failed int
	onStored := func(t core.Transaction, created bool) {
		if client == nil {
			return
		}
		op := amqp.OpUpdate
		if created {
			op = amqp.OpInsert
		}
		if err := client.PublishTransactionChanged(env.ctx, t.ID, op); err != nil {
			env.logger.WarnContext(env.ctx, "Failed to publish transaction change", "transaction_id", t.ID, "error", err)
			failed++
			return
		}
		published++
	}

	res, err := repo.ImportTransactions(env.ctx, parsed.Transactions, onStored)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s: %d created, %d updated, %d skipped\n", args[0], res.Created, res.Updated, len(parsed.Skipped))
	for _, s := range parsed.Skipped {
		fmt.Println(cli.RenderMuted("  skipped " + s.Error()))
	}
	if client != nil {
		fmt.Printf("Change notifications: %d published, %d failed\n", published, failed)
	}
	return nil
}
