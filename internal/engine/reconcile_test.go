package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavh/aptwatch/internal/model"
)

func TestReconcile_TruthTable(t *testing.T) {
	tests := []struct {
		name        string
		inLedger    bool
		savedRemote bool
		want        Action
	}{
		{name: "both saved", inLedger: true, savedRemote: true, want: ActionSkipBothSaved},
		{name: "ledger only", inLedger: true, savedRemote: false, want: ActionSyncToRemote},
		{name: "remote only", inLedger: false, savedRemote: true, want: ActionSyncToLedger},
		{name: "neither", inLedger: false, savedRemote: false, want: ActionNeedsProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ledger := newMemLedger()
			if tt.inLedger {
				require.NoError(t, ledger.Upsert(ctx, "item-1", "https://example.com/item/1"))
			}

			listing := &model.Listing{
				ItemID:        "item-1",
				URL:           "https://example.com/item/1",
				IsSavedRemote: tt.savedRemote,
			}

			action, err := Reconcile(ctx, listing, ledger)
			require.NoError(t, err)
			assert.Equal(t, tt.want, action)
			assert.Equal(t, tt.want != ActionNeedsProcessing, action.Resolved())
		})
	}
}

func TestReconcile_IndependentOfListingContent(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()

	listing := &model.Listing{
		ItemID:        "item-1",
		URL:           "https://example.com/item/1",
		IsSavedRemote: true,
		Price:         2500000,
		Location:      model.Location{City: "עיר", Street: "רחוב"},
	}

	action, err := Reconcile(ctx, listing, ledger)
	require.NoError(t, err)
	assert.Equal(t, ActionSyncToLedger, action)
}

func TestReconcile_LedgerError(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ledger.existsErr = errors.New("disk on fire")

	listing := &model.Listing{ItemID: "item-1", URL: "https://example.com/item/1"}

	_, err := Reconcile(ctx, listing, ledger)
	assert.Error(t, err)
}

func TestApplyReconciliation_SyncToLedger(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	scraper := newFakeScraper()
	e := New(ledger, scraper, &fakeNotifier{}, &stubMatcher{}, NewMockPrompter(), DefaultConfig())

	listing := &model.Listing{
		ItemID:        "item-1",
		URL:           "https://example.com/item/1",
		IsSavedRemote: true,
	}

	e.applyReconciliation(ctx, listing, ActionSyncToLedger)

	exists, err := ledger.Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApplyReconciliation_SyncToRemote(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	scraper := newFakeScraper()
	e := New(ledger, scraper, &fakeNotifier{}, &stubMatcher{}, NewMockPrompter(), DefaultConfig())

	listing := &model.Listing{ItemID: "item-1", URL: "https://example.com/item/1"}

	e.applyReconciliation(ctx, listing, ActionSyncToRemote)
	assert.True(t, scraper.remoteSaved("item-1"))
}

func TestApplyReconciliation_SyncFailureDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	ledger.upsertErr = errors.New("locked")
	scraper := newFakeScraper()
	scraper.saveErr = errors.New("captcha")
	e := New(ledger, scraper, &fakeNotifier{}, &stubMatcher{}, NewMockPrompter(), DefaultConfig())

	listing := &model.Listing{ItemID: "item-1", URL: "https://example.com/item/1", IsSavedRemote: true}

	// Best-effort: failures are logged, never propagated.
	e.applyReconciliation(ctx, listing, ActionSyncToLedger)
	e.applyReconciliation(ctx, listing, ActionSyncToRemote)
}
