package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nadavh/aptwatch/internal/model"
	"github.com/nadavh/aptwatch/internal/service"
)

// Action is the outcome of reconciling one listing against the ledger and
// the remote saved flag.
type Action int

const (
	// ActionNeedsProcessing means the listing is genuinely new and flows
	// into the approval pipeline.
	ActionNeedsProcessing Action = iota
	// ActionSkipBothSaved means ledger and remote already agree; no work.
	ActionSkipBothSaved
	// ActionSyncToRemote means the ledger has the item but the remote
	// flag was lost; replay the remote save.
	ActionSyncToRemote
	// ActionSyncToLedger means the remote flag is set but the ledger
	// missed it; record it locally.
	ActionSyncToLedger
)

// String returns a human-readable action name for logging.
func (a Action) String() string {
	switch a {
	case ActionSkipBothSaved:
		return "skip_both_saved"
	case ActionSyncToRemote:
		return "sync_to_remote"
	case ActionSyncToLedger:
		return "sync_to_ledger"
	case ActionNeedsProcessing:
		return "needs_processing"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Resolved reports whether the action terminates handling of the listing
// for this run, short-circuiting categorization and approval.
func (a Action) Resolved() bool {
	return a != ActionNeedsProcessing
}

// Reconcile resolves the 2x2 grid of (ledger has item, remote saved flag)
// into a single action. Only the ledger lookup can fail.
func Reconcile(ctx context.Context, listing *model.Listing, ledger service.Ledger) (Action, error) {
	inLedger, err := ledger.Exists(ctx, listing.ItemID)
	if err != nil {
		return ActionNeedsProcessing, fmt.Errorf("failed to check ledger for %s: %w", listing.ItemID, err)
	}

	switch {
	case inLedger && listing.IsSavedRemote:
		return ActionSkipBothSaved, nil
	case inLedger && !listing.IsSavedRemote:
		return ActionSyncToRemote, nil
	case !inLedger && listing.IsSavedRemote:
		return ActionSyncToLedger, nil
	default:
		return ActionNeedsProcessing, nil
	}
}

// applyReconciliation executes the side effect of a resolved action. Sync
// failures are logged, not propagated: every run re-derives reconciliation
// from scratch, so a missed sync heals on the next pass.
func (e *Engine) applyReconciliation(ctx context.Context, listing *model.Listing, action Action) {
	switch action {
	case ActionSkipBothSaved:
		// Invariant already holds.
	case ActionSyncToRemote:
		if err := e.scraper.Save(ctx, listing); err != nil {
			slog.Warn("Failed to replay remote save",
				"item_id", listing.ItemID,
				"url", listing.URL,
				"error", err)
		}
	case ActionSyncToLedger:
		if err := e.ledger.Upsert(ctx, listing.ItemID, listing.URL); err != nil {
			slog.Warn("Failed to record remote-saved item in ledger",
				"item_id", listing.ItemID,
				"url", listing.URL,
				"error", err)
		}
	case ActionNeedsProcessing:
		// Nothing to sync; the item flows into the approval pipeline.
	}
}
