package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nadavh/aptwatch/internal/cli"
	"github.com/nadavh/aptwatch/internal/model"
)

func savedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage the saved-items ledger",
	}

	cmd.AddCommand(savedImportCmd())
	cmd.AddCommand(savedListCmd())

	return cmd
}

func savedImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the remote saved-items page into the ledger",
		Long: `Import scrapes the site's favorites page and records every saved item
in the local ledger. Run it once when adopting an account that already
has saved listings; after that, reconciliation keeps the two in sync.`,
		RunE: runSavedImport,
	}
}

func runSavedImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ledger, err := initLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			slog.Warn("Failed to close ledger", "error", closeErr)
		}
	}()

	client, err := initClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	slog.Info(cli.FormatTitle("Importing saved items..."))

	entries, err := client.FetchSaved(ctx)
	if err != nil {
		return err
	}

	imported := 0
	for _, entry := range entries {
		if entry.Kind != model.KindSavedRef {
			continue
		}

		ref := entry.SavedRef
		if err := ledger.Upsert(ctx, ref.ItemID, ref.URL); err != nil {
			slog.Error("Failed to record saved item", "item_id", ref.ItemID, "error", err)
			continue
		}
		imported++
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d saved items", imported)))
	return nil
}

func savedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every item recorded in the ledger",
		RunE:  runSavedList,
	}
}

func runSavedList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ledger, err := initLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			slog.Warn("Failed to close ledger", "error", closeErr)
		}
	}()

	items, err := ledger.All(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println(cli.FormatInfo("The ledger is empty"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d saved items", len(items))))
	for _, item := range items {
		fmt.Printf("  %s  %s\n", item.ItemID, cli.SubtleStyle.Render(item.URL))
	}

	return nil
}
