// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/nadavh/aptwatch/internal/model"
)

// Ledger is the durable record of items that have already been dispatched.
// It is the only component allowed to touch the saved_items table.
type Ledger interface {
	// Upsert inserts the record or, if item_id already exists, overwrites
	// its URL (last write wins).
	Upsert(ctx context.Context, itemID, url string) error
	Exists(ctx context.Context, itemID string) (bool, error)
	All(ctx context.Context) ([]model.SavedItem, error)
	Close() error
}

// Scraper is the browser-automation collaborator. It hands back feed
// entries already parsed into domain shapes; the core never issues DOM
// queries itself.
type Scraper interface {
	NavigateTo(ctx context.Context, url string) error
	// FetchFeed returns the entries of the current results feed, walking
	// pagination up to the scraper's page limit.
	FetchFeed(ctx context.Context) ([]model.FeedEntry, error)
	// Save toggles the remote "saved" flag for the listing.
	Save(ctx context.Context, listing *model.Listing) error
	// Enrich fills in floor, features, and contact from the detail page.
	// The listing is modified in place; ItemID and URL are never touched.
	Enrich(ctx context.Context, listing *model.Listing) error
}

// Notifier dispatches a formatted title/body pair for an approved listing.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// RunStats summarizes one processing run for the operator.
type RunStats struct {
	Reconciled int
	Notified   int
	Rejected   int
	Skipped    int
	Errored    int
	Duration   time.Duration
}
