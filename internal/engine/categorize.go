package engine

import (
	"github.com/nadavh/aptwatch/internal/model"
)

// Categorize partitions listings into saved, supported, and unsupported
// buckets. A listing already saved on the remote site is never re-classified;
// "already handled" dominates "needs a decision". Input order is preserved
// within each bucket and the input is not mutated.
func Categorize(listings []*model.Listing, matcher StreetMatcher) model.CategorizedFeed {
	var feed model.CategorizedFeed

	for _, listing := range listings {
		if listing.IsSavedRemote {
			feed.Saved = append(feed.Saved, listing)
			continue
		}

		match := matcher.Match(listing.Location.Street, listing.Location.City)
		if match.IsAllowed {
			feed.Supported = append(feed.Supported, listing)
		} else {
			feed.Unsupported = append(feed.Unsupported, listing)
		}
	}

	return feed
}
