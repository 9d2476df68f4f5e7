package yad2

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/nadavh/aptwatch/internal/model"
)

// ParseSavedFeed extracts (item id, url) references from the saved-items
// page. Cards there carry no price or specs worth keeping; only the
// reference matters for reconciliation.
func ParseSavedFeed(doc *goquery.Document) []model.FeedEntry {
	var entries []model.FeedEntry

	doc.Find(selSavedItem).Each(func(_ int, card *goquery.Selection) {
		href, ok := card.Find(selSavedItemLink).First().Attr("href")
		if !ok {
			slog.Error("Saved item card has no link")
			return
		}

		url := stripQuery(href)
		itemID, err := itemIDFromURL(url)
		if err != nil {
			slog.Error("Failed to parse saved item", "error", err)
			return
		}

		entries = append(entries, model.NewSavedRefEntry(model.SavedRef{
			ItemID: itemID,
			URL:    url,
		}))
	})

	return entries
}
