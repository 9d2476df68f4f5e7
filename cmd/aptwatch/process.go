package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nadavh/aptwatch/internal/cli"
	"github.com/nadavh/aptwatch/internal/engine"
	"github.com/nadavh/aptwatch/internal/service"
)

// dropNotifier satisfies the notifier contract for dry runs.
type dropNotifier struct{}

func (dropNotifier) Send(_ context.Context, subject, _ string) error {
	slog.Info("Dry run, dropping notification", "subject", subject)
	return nil
}

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the full triage pipeline over the current feed",
		Long: `Process fetches the feed, reconciles it against the ledger and the
remote saved flags, and walks every genuinely new listing through the
interactive approval gates. Approved listings are mailed; every handled
listing ends up saved on both sides.`,
		RunE: runProcess,
	}

	cmd.Flags().Bool("dry-run", false, "Skip sending mail; prompts and saves still happen")
	_ = viper.BindPFlag("processing.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	matcher, err := initMatcher()
	if err != nil {
		return err
	}

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

	var notifier service.Notifier = dropNotifier{}
	if !viper.GetBool("processing.dry_run") {
		sender, senderErr := initNotifier(ctx)
		if senderErr != nil {
			return senderErr
		}
		notifier = sender
	} else {
		slog.Info("Dry run: notifications will be dropped")
	}

	prompter := cli.NewApprovalPrompter(os.Stdin, os.Stdout,
		viper.GetBool("display.reverse_hebrew"))

	engineCfg := engine.DefaultConfig()
	engineCfg.RejectTopFloor = viper.GetBool("processing.reject_top_floor")

	eng := engine.New(ledger, client, notifier, matcher, prompter, engineCfg)

	slog.Info(cli.FormatTitle("Processing listings..."))

	listings, err := fetchListings(ctx, client)
	if err != nil {
		return err
	}

	stats, err := eng.ProcessBatch(ctx, listings)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("Reconciled: %d\n", stats.Reconciled) +
		fmt.Sprintf("Notified: %d\n", stats.Notified) +
		fmt.Sprintf("Rejected: %d\n", stats.Rejected) +
		fmt.Sprintf("Skipped: %d\n", stats.Skipped) +
		fmt.Sprintf("Errored: %d\n", stats.Errored) +
		fmt.Sprintf("Duration: %s", stats.Duration.Round(time.Second))

	fmt.Println(cli.RenderBox("Run Complete", content))
	return nil
}
