// Package engine implements the reconcile/categorize/approve pipeline that
// turns a scraped feed into dispatched notifications.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/nadavh/aptwatch/internal/common"
	"github.com/nadavh/aptwatch/internal/model"
	"github.com/nadavh/aptwatch/internal/service"
)

// Engine orchestrates per-listing processing. It owns no I/O of its own;
// every side effect goes through an injected collaborator.
type Engine struct {
	ledger   service.Ledger
	scraper  service.Scraper
	notifier service.Notifier
	matcher  StreetMatcher
	prompter Prompter
	config   Config
}

// Config holds processing policy toggles.
type Config struct {
	// RejectTopFloor auto-rejects a listing whose enriched floor data
	// shows it on the building's last floor.
	RejectTopFloor bool
	// NotifyRetry configures retry behavior for notification sends.
	NotifyRetry service.RetryOptions
}

// DefaultConfig returns the default processing policy.
func DefaultConfig() Config {
	return Config{
		RejectTopFloor: true,
		NotifyRetry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// New creates a processing engine with the given collaborators.
func New(ledger service.Ledger, scraper service.Scraper, notifier service.Notifier, matcher StreetMatcher, prompter Prompter, config Config) *Engine {
	return &Engine{
		ledger:   ledger,
		scraper:  scraper,
		notifier: notifier,
		matcher:  matcher,
		prompter: prompter,
		config:   config,
	}
}

// outcome is the terminal state of one listing's pass through the pipeline.
type outcome int

const (
	outcomeNotified outcome = iota
	outcomeRejected
	outcomeSkipped
	outcomeErrored
)

// ProcessBatch drives the full per-item flow: reconcile, categorize, then
// approval/enrichment/notification for the genuinely new items, supported
// streets strictly before unsupported ones. An error while processing one
// listing never interrupts the batch; only context cancellation does, and
// only between items.
func (e *Engine) ProcessBatch(ctx context.Context, listings []*model.Listing) (service.RunStats, error) {
	start := time.Now()
	stats := service.RunStats{}

	if len(listings) == 0 {
		slog.Warn("No listings to process")
		stats.Duration = time.Since(start)
		return stats, nil
	}

	// Reconcile everything first; only NeedsProcessing items continue on
	// to categorization and approval.
	pending := make([]*model.Listing, 0, len(listings))
	for _, listing := range listings {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		action, err := Reconcile(ctx, listing, e.ledger)
		if err != nil {
			slog.Error("Reconciliation failed, skipping item this run",
				"url", listing.URL,
				"error", err)
			stats.Errored++
			continue
		}

		if action.Resolved() {
			slog.Debug("Listing already resolved",
				"item_id", listing.ItemID,
				"action", action.String())
			e.applyReconciliation(ctx, listing, action)
			stats.Reconciled++
			continue
		}

		pending = append(pending, listing)
	}

	feed := Categorize(pending, e.matcher)
	slog.Info("Categorized feed",
		"supported", len(feed.Supported),
		"unsupported", len(feed.Unsupported),
		"pending", len(pending))

	for i, listing := range feed.Supported {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		e.prompter.BatchProgress("supported", i+1, len(feed.Supported))
		e.recordOutcome(&stats, e.processSupported(ctx, listing))
	}

	for i, listing := range feed.Unsupported {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		e.prompter.BatchProgress("unsupported", i+1, len(feed.Unsupported))
		e.recordOutcome(&stats, e.processUnsupported(ctx, listing))
	}

	stats.Duration = time.Since(start)
	slog.Info("Batch complete",
		"reconciled", stats.Reconciled,
		"notified", stats.Notified,
		"rejected", stats.Rejected,
		"skipped", stats.Skipped,
		"errored", stats.Errored)

	return stats, nil
}

func (e *Engine) recordOutcome(stats *service.RunStats, result outcome) {
	switch result {
	case outcomeNotified:
		stats.Notified++
	case outcomeRejected:
		stats.Rejected++
	case outcomeSkipped:
		stats.Skipped++
	case outcomeErrored:
		stats.Errored++
	}
}

// processSupported handles one allow-listed listing. A constraint is
// surfaced before anything else so the operator can decline before any
// enrichment cost is paid.
func (e *Engine) processSupported(ctx context.Context, listing *model.Listing) outcome {
	defer e.markSaved(ctx, listing)

	match := e.matcher.Match(listing.Location.Street, listing.Location.City)

	if match.Constraint != "" {
		proceed, err := e.prompter.ConfirmConstraint(ctx, listing, match)
		if err != nil {
			slog.Error("Constraint prompt failed", "url", listing.URL, "error", err)
			return outcomeErrored
		}
		if !proceed {
			slog.Info("Skipped constrained listing", "url", listing.URL)
			return outcomeSkipped
		}
	}

	return e.processItem(ctx, listing, match)
}

// processUnsupported offers to skip a listing whose street is off-list; the
// operator may still push it through the full flow.
func (e *Engine) processUnsupported(ctx context.Context, listing *model.Listing) outcome {
	defer e.markSaved(ctx, listing)

	skip, err := e.prompter.ConfirmUnsupportedSkip(ctx, listing)
	if err != nil {
		slog.Error("Unsupported prompt failed", "url", listing.URL, "error", err)
		return outcomeErrored
	}
	if skip {
		slog.Info("Skipped unsupported listing", "url", listing.URL)
		return outcomeSkipped
	}

	return e.processItem(ctx, listing, model.StreetMatch{})
}

// processItem runs the two approval gates with enrichment in between. Every
// return path is a terminal state; the deferred markSaved in the callers
// restores the ledger/remote invariant regardless of outcome.
func (e *Engine) processItem(ctx context.Context, listing *model.Listing, match model.StreetMatch) outcome {
	approved, err := e.prompter.ConfirmSend(ctx, listing, match)
	if err != nil {
		slog.Error("Approval prompt failed", "url", listing.URL, "error", err)
		return outcomeErrored
	}
	if !approved {
		slog.Info("Rejected listing", "url", listing.URL)
		return outcomeRejected
	}

	if err := e.scraper.Enrich(ctx, listing); err != nil {
		slog.Error("Failed to enrich listing", "url", listing.URL, "error", err)
		return outcomeErrored
	}

	if e.config.RejectTopFloor && listing.IsTopFloor() {
		e.prompter.NotifyAutoReject(listing, "last floor is not recommended")
		slog.Info("Rejected top-floor listing", "url", listing.URL)
		return outcomeRejected
	}

	formatted := listing.FormatListing()
	approved, err = e.prompter.ConfirmFormat(ctx, listing, formatted)
	if err != nil {
		slog.Error("Format prompt failed", "url", listing.URL, "error", err)
		return outcomeErrored
	}
	if !approved {
		slog.Info("Skipped sending listing", "url", listing.URL)
		return outcomeSkipped
	}

	sendErr := common.WithRetry(ctx, func() error {
		if err := e.notifier.Send(ctx, formatted, listing.URL); err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}, e.config.NotifyRetry)
	if sendErr != nil {
		slog.Error("Failed to send notification", "url", listing.URL, "error", sendErr)
		return outcomeErrored
	}

	slog.Info("Notified listing", "item_id", listing.ItemID, "url", listing.URL)
	return outcomeNotified
}

// markSaved is the unconditional terminal side effect: mark the listing
// saved on the remote site and in the ledger. Failures are logged with the
// item URL and swallowed; the next run's reconciliation retries them.
func (e *Engine) markSaved(ctx context.Context, listing *model.Listing) {
	if err := e.scraper.Save(ctx, listing); err != nil {
		slog.Warn("Failed to mark listing saved on remote",
			"url", listing.URL,
			"error", err)
	}

	if err := e.ledger.Upsert(ctx, listing.ItemID, listing.URL); err != nil {
		slog.Warn("Failed to record listing in ledger",
			"url", listing.URL,
			"error", err)
	}
}
