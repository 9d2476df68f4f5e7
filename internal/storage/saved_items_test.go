package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	ledger, err := NewSQLiteLedger(dbPath)
	require.NoError(t, err)

	require.NoError(t, ledger.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = ledger.Close()
	})

	return ledger
}

func TestSQLiteLedger_UpsertAndExists(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	exists, err := ledger.Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, ledger.Upsert(ctx, "item-1", "https://example.com/item/1"))

	exists, err = ledger.Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteLedger_UpsertLastWriteWins(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "item-1", "https://example.com/item/1"))
	require.NoError(t, ledger.Upsert(ctx, "item-1", "https://example.com/item/1-moved"))

	exists, err := ledger.Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, exists)

	items, err := ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "upsert must overwrite, not duplicate")
	assert.Equal(t, "item-1", items[0].ItemID)
	assert.Equal(t, "https://example.com/item/1-moved", items[0].URL)
}

func TestSQLiteLedger_All(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.Upsert(ctx, "b", "https://example.com/item/b"))
	require.NoError(t, ledger.Upsert(ctx, "a", "https://example.com/item/a"))
	require.NoError(t, ledger.Upsert(ctx, "c", "https://example.com/item/c"))

	items, err := ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Order is stable within a session
	again, err := ledger.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, again)
}

func TestSQLiteLedger_InputValidation(t *testing.T) {
	ledger := createTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		itemID string
		url    string
	}{
		{name: "empty item id", itemID: "", url: "https://example.com/item/1"},
		{name: "empty url", itemID: "item-1", url: ""},
		{name: "whitespace item id", itemID: "   ", url: "https://example.com/item/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.Upsert(ctx, tt.itemID, tt.url)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSQLiteLedger_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	ledger, err := NewSQLiteLedger(dbPath)
	require.NoError(t, err)
	require.NoError(t, ledger.Migrate(ctx))
	require.NoError(t, ledger.Upsert(ctx, "item-1", "https://example.com/item/1"))
	require.NoError(t, ledger.Close())

	reopened, err := NewSQLiteLedger(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	exists, err := reopened.Exists(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, exists)
}
