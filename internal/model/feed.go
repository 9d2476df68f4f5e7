package model

// FeedEntryKind discriminates what a scraped feed element resolved to.
type FeedEntryKind string

const (
	// KindListing is a full listing card from the search feed.
	KindListing FeedEntryKind = "listing"
	// KindSavedRef is a bare (item id, url) reference from the saved-items page.
	KindSavedRef FeedEntryKind = "saved_ref"
)

// SavedRef is a minimal reference to an item on the remote saved-items page.
type SavedRef struct {
	ItemID string
	URL    string
}

// FeedEntry is the tagged variant returned at the scraper boundary. Exactly
// one of Listing or SavedRef is set, according to Kind; downstream code
// switches on Kind and never infers the shape.
type FeedEntry struct {
	Listing  *Listing
	SavedRef *SavedRef
	Kind     FeedEntryKind
}

// NewListingEntry wraps a listing in a feed entry.
func NewListingEntry(l *Listing) FeedEntry {
	return FeedEntry{Kind: KindListing, Listing: l}
}

// NewSavedRefEntry wraps a saved-item reference in a feed entry.
func NewSavedRefEntry(r SavedRef) FeedEntry {
	return FeedEntry{Kind: KindSavedRef, SavedRef: &r}
}

// CategorizedFeed partitions a batch of listings by how they should be
// handled. Order within each bucket preserves feed order.
type CategorizedFeed struct {
	Supported   []*Listing
	Unsupported []*Listing
	Saved       []*Listing
}

// FeedStats are the aggregate bucket counts for reporting.
type FeedStats struct {
	Total       int
	Supported   int
	Unsupported int
	Saved       int
}

// Stats returns the bucket counts of the categorized feed.
func (c CategorizedFeed) Stats() FeedStats {
	return FeedStats{
		Total:       len(c.Supported) + len(c.Unsupported) + len(c.Saved),
		Supported:   len(c.Supported),
		Unsupported: len(c.Unsupported),
		Saved:       len(c.Saved),
	}
}
