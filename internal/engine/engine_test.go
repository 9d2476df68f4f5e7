package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavh/aptwatch/internal/model"
	"github.com/nadavh/aptwatch/internal/service"
)

func intPtr(v int) *int { return &v }

func newTestEngine(t *testing.T) (*Engine, *memLedger, *fakeScraper, *fakeNotifier, *MockPrompter) {
	t.Helper()

	ledger := newMemLedger()
	scraper := newFakeScraper()
	notifier := &fakeNotifier{}
	prompter := NewMockPrompter()
	matcher := &stubMatcher{allowed: map[string]model.StreetMatch{
		"Allowed":     {IsAllowed: true, Neighborhood: "Center", City: "Test City"},
		"Constrained": {IsAllowed: true, Constraint: "even numbers only", Neighborhood: "Center"},
	}}

	cfg := DefaultConfig()
	cfg.NotifyRetry = service.RetryOptions{MaxAttempts: 1}

	return New(ledger, scraper, notifier, matcher, prompter, cfg), ledger, scraper, notifier, prompter
}

func TestProcessBatch_InvariantRestoredForAllFourStates(t *testing.T) {
	e, ledger, scraper, notifier, _ := newTestEngine(t)
	ctx := context.Background()

	// Four listings, one per (ledger, remote) combination.
	bothSaved := listingOn("both", "Allowed")
	bothSaved.IsSavedRemote = true
	require.NoError(t, ledger.Upsert(ctx, "both", bothSaved.URL))
	scraper.savedRemote["both"] = true

	ledgerOnly := listingOn("local", "Allowed")
	require.NoError(t, ledger.Upsert(ctx, "local", ledgerOnly.URL))

	remoteOnly := listingOn("remote", "Allowed")
	remoteOnly.IsSavedRemote = true

	fresh := listingOn("fresh", "Allowed")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{bothSaved, ledgerOnly, remoteOnly, fresh})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Reconciled)
	assert.Equal(t, 1, stats.Notified)

	// After a full pass with no rejections, every item is in the ledger
	// and marked saved on the remote side.
	for _, id := range []string{"both", "local", "remote", "fresh"} {
		exists, existsErr := ledger.Exists(ctx, id)
		require.NoError(t, existsErr)
		assert.True(t, exists, "item %s missing from ledger", id)
	}
	assert.True(t, scraper.remoteSaved("local"), "ledger-only item should be replayed to remote")
	assert.True(t, scraper.remoteSaved("fresh"), "processed item should be marked saved")
	assert.True(t, scraper.remoteSaved("remote"))

	// Only the genuinely new item was dispatched.
	assert.Len(t, notifier.sent(), 1)
}

func TestProcessBatch_SupportedBeforeUnsupported(t *testing.T) {
	e, _, _, _, prompter := newTestEngine(t)
	ctx := context.Background()

	unsupported := listingOn("u1", "Elsewhere")
	supported := listingOn("s1", "Allowed")
	prompter.ProcessUnsupported("u1")

	_, err := e.ProcessBatch(ctx, []*model.Listing{unsupported, supported})
	require.NoError(t, err)

	// The supported item reaches the approval gate first even though it
	// came second in the feed.
	require.Equal(t, []string{"s1", "u1"}, prompter.SendCalls())
}

func TestProcessBatch_ConstraintPromptPrecedesApproval(t *testing.T) {
	e, ledger, scraper, notifier, prompter := newTestEngine(t)
	ctx := context.Background()

	constrained := listingOn("c1", "Constrained")
	prompter.DeclineConstraint("c1")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{constrained})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []string{"c1"}, prompter.ConstraintCalls())
	assert.Empty(t, prompter.SendCalls(), "declined constraint skips the approval gate")
	assert.Empty(t, scraper.enriched, "no enrichment cost before the constraint decision")
	assert.Empty(t, notifier.sent())

	// Declining still finalizes save state on both sides.
	exists, err := ledger.Exists(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, scraper.remoteSaved("c1"))
}

func TestProcessBatch_FirstGateRejectionStillSaves(t *testing.T) {
	e, ledger, scraper, notifier, prompter := newTestEngine(t)
	ctx := context.Background()

	listing := listingOn("r1", "Allowed")
	prompter.RejectSend("r1")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Rejected)
	assert.Empty(t, notifier.sent())
	assert.Empty(t, scraper.enriched, "rejection precedes enrichment")

	exists, err := ledger.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, scraper.remoteSaved("r1"))
}

func TestProcessBatch_FormatRejectionSkipsSend(t *testing.T) {
	e, ledger, _, notifier, prompter := newTestEngine(t)
	ctx := context.Background()

	listing := listingOn("f1", "Allowed")
	prompter.RejectFormat("f1")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, notifier.sent())

	exists, err := ledger.Exists(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessBatch_TopFloorAutoReject(t *testing.T) {
	e, ledger, scraper, notifier, prompter := newTestEngine(t)
	ctx := context.Background()

	listing := listingOn("top", "Allowed")
	scraper.enrichWith["top"] = model.PropertyFeatures{
		CurrentFloor: intPtr(4),
		TotalFloors:  intPtr(4),
	}

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, []string{"top"}, prompter.AutoRejects())
	assert.Empty(t, prompter.FormatCalls(), "auto-reject bypasses the format gate")
	assert.Empty(t, notifier.sent())

	exists, err := ledger.Exists(ctx, "top")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessBatch_TopFloorPolicyDisabled(t *testing.T) {
	e, _, scraper, notifier, _ := newTestEngine(t)
	e.config.RejectTopFloor = false
	ctx := context.Background()

	listing := listingOn("top", "Allowed")
	scraper.enrichWith["top"] = model.PropertyFeatures{
		CurrentFloor: intPtr(4),
		TotalFloors:  intPtr(4),
	}

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Notified)
	assert.Len(t, notifier.sent(), 1)
}

func TestProcessBatch_EnrichFailureIsolated(t *testing.T) {
	e, ledger, scraper, notifier, _ := newTestEngine(t)
	ctx := context.Background()

	broken := listingOn("bad", "Allowed")
	scraper.enrichErr["bad"] = errors.New("detail page gone")
	healthy := listingOn("good", "Allowed")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{broken, healthy})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Errored)
	assert.Equal(t, 1, stats.Notified)
	assert.Len(t, notifier.sent(), 1, "failure of one item must not interrupt the batch")

	// The failed item still gets its terminal save attempt.
	exists, existsErr := ledger.Exists(ctx, "bad")
	require.NoError(t, existsErr)
	assert.True(t, exists)
	assert.True(t, scraper.remoteSaved("bad"))
}

func TestProcessBatch_NotifyFailureIsolated(t *testing.T) {
	e, ledger, _, notifier, _ := newTestEngine(t)
	notifier.sendErr = errors.New("smtp down")
	ctx := context.Background()

	listing := listingOn("n1", "Allowed")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Errored)

	exists, err := ledger.Exists(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessBatch_UnsupportedSkippedByDefault(t *testing.T) {
	e, ledger, scraper, notifier, prompter := newTestEngine(t)
	ctx := context.Background()

	listing := listingOn("u1", "Elsewhere")

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, []string{"u1"}, prompter.UnsupportedCalls())
	assert.Empty(t, notifier.sent())

	exists, err := ledger.Exists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.True(t, scraper.remoteSaved("u1"))
}

func TestProcessBatch_NotificationUsesFormattedListing(t *testing.T) {
	e, _, _, notifier, _ := newTestEngine(t)
	ctx := context.Background()

	listing := listingOn("n1", "Allowed")
	listing.Price = 2450000

	_, err := e.ProcessBatch(ctx, []*model.Listing{listing})
	require.NoError(t, err)

	require.Len(t, notifier.subjects, 1)
	assert.Equal(t, listing.FormatListing(), notifier.subjects[0])
	assert.Equal(t, listing.URL, notifier.bodies[0])
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	e, _, _, _, _ := newTestEngine(t)

	stats, err := e.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, service.RunStats{Duration: stats.Duration}, stats)
}

func TestProcessBatch_ContextCancellationBetweenItems(t *testing.T) {
	e, _, _, _, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ProcessBatch(ctx, []*model.Listing{listingOn("x", "Allowed")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessBatch_ReconcileErrorCountsAsErrored(t *testing.T) {
	e, ledger, _, notifier, prompter := newTestEngine(t)
	ledger.existsErr = errors.New("disk on fire")
	ctx := context.Background()

	stats, err := e.ProcessBatch(ctx, []*model.Listing{listingOn("x", "Allowed")})
	require.NoError(t, err, "per-item errors never escape the batch loop")

	assert.Equal(t, 1, stats.Errored)
	assert.Empty(t, prompter.SendCalls())
	assert.Empty(t, notifier.sent())
}
