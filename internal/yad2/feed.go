package yad2

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nadavh/aptwatch/internal/model"
)

// ParseFeed extracts listings from one search results page. A card that
// fails to parse is logged and dropped; the rest of the page survives.
func ParseFeed(doc *goquery.Document) []model.FeedEntry {
	container := doc.Find(selFeedContainer).First()
	if container.Length() == 0 {
		slog.Warn("Feed container not found on page")
		return nil
	}

	var entries []model.FeedEntry
	container.Find(selFeedItem).Each(func(_ int, card *goquery.Selection) {
		// Promoted yad1 placements are not real feed results.
		if testid, _ := card.Attr("data-testid"); strings.Contains(testid, "yad1-listing") {
			return
		}

		listing, err := parseCard(card)
		if err != nil {
			slog.Error("Failed to parse feed item", "error", err)
			return
		}
		entries = append(entries, model.NewListingEntry(listing))
	})

	return entries
}

func parseCard(card *goquery.Selection) (*model.Listing, error) {
	href, ok := card.Find(selItemLink).First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("feed card has no link")
	}

	url := stripQuery(href)
	itemID, err := itemIDFromURL(url)
	if err != nil {
		return nil, err
	}

	location, err := parseLocation(card)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}

	listing := &model.Listing{
		ItemID:        itemID,
		URL:           url,
		Location:      location,
		Specs:         parseSpecs(card),
		Price:         parsePrice(card),
		IsSavedRemote: parseIsSaved(card),
		Tags:          parseTags(card),
	}

	if card.Find(selAgencyBox).Length() > 0 {
		listing.IsAgency = true
		listing.AgencyName = strings.TrimSpace(card.Find(selAgencyName).First().Text())
		if listing.AgencyName == "" {
			slog.Warn("Agency listing has no agency name", "item_id", itemID)
		}
	}

	return listing, nil
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// itemIDFromURL pulls the listing token out of an /item/<id> URL.
func itemIDFromURL(url string) (string, error) {
	const marker = "/item/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", fmt.Errorf("no item id in %q", url)
	}
	id := url[i+len(marker):]
	if id == "" {
		return "", fmt.Errorf("empty item id in %q", url)
	}
	return id, nil
}

// parseLocation splits the "neighborhood, area, city" info line. The city is
// always the last component; street comes from the card heading.
func parseLocation(card *goquery.Selection) (model.Location, error) {
	street := strings.TrimSpace(card.Find(selStreetName).First().Text())
	if street == "" {
		return model.Location{}, fmt.Errorf("feed card has no street heading")
	}

	info := card.Find(selLocationInfo).First().Text()
	parts := strings.Split(info, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return model.Location{}, fmt.Errorf("feed card has no location line")
	}

	location := model.Location{
		Street: street,
		City:   parts[len(parts)-1],
	}
	if len(parts) > 2 {
		location.Neighborhood = parts[len(parts)-2]
	}
	if len(parts) > 3 {
		location.Area = parts[len(parts)-3]
	}

	return location, nil
}

// parseSpecs reads the bullet-separated summary line: rooms, floor, size.
// Missing or malformed components are left zero.
func parseSpecs(card *goquery.Selection) model.PropertySpecs {
	text := card.Find(selSpecs).First().Text()
	parts := strings.Split(text, "•")

	var specs model.PropertySpecs
	if len(parts) > 0 {
		if fields := strings.Fields(parts[0]); len(fields) > 0 {
			if rooms, err := strconv.ParseFloat(fields[0], 64); err == nil {
				specs.Rooms = rooms
			}
		}
	}
	if len(parts) > 1 {
		if fields := strings.Fields(parts[1]); len(fields) > 1 {
			if floor, err := strconv.Atoi(fields[1]); err == nil {
				specs.Floor = floor
			}
		}
	}
	if len(parts) > 2 {
		if fields := strings.Fields(parts[2]); len(fields) > 0 {
			if size, err := strconv.Atoi(fields[0]); err == nil {
				specs.SizeSqm = size
			}
		}
	}

	return specs
}

func parsePrice(card *goquery.Selection) int {
	text := card.Find(selPrice).First().Text()
	text = strings.NewReplacer("₪", "", ",", "").Replace(text)
	price, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		slog.Warn("Could not parse price from feed card", "text", text)
		return 0
	}
	return price
}

// parseIsSaved inspects the like-button icon. The saved state renders with a
// single class on the icon div, the unsaved state with two.
func parseIsSaved(card *goquery.Selection) bool {
	icon := card.Find(selLikeButton).First().Find("div").First()
	classes, ok := icon.Attr("class")
	if !ok {
		return false
	}
	return len(strings.Fields(classes)) == 1
}

func parseTags(card *goquery.Selection) []string {
	var tags []string
	card.Find(selTagsBox).First().Find("span").Each(func(_ int, tag *goquery.Selection) {
		if text := strings.TrimSpace(tag.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	return tags
}
