package yad2

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nadavh/aptwatch/internal/model"
)

// hebrew feature labels on the detail page.
const (
	labelFloor    = "קומה"
	labelElevator = "מעלית"
	labelMamad    = `ממ"ד`
	labelBalcony  = "מרפסת"
	labelStorage  = "מחסן"
	labelParking  = "חניות"
)

// ParseDetails fills floor, features, parking, and contact into the listing
// from its detail page. Each section degrades independently; a missing
// section is logged and skipped.
func ParseDetails(doc *goquery.Document, listing *model.Listing) {
	parseFloorInfo(doc, listing)
	parseFeatures(doc, listing)
	parseParking(doc, listing)

	if !listing.IsAgency {
		parseContact(doc, listing)
	}
}

// parseFloorInfo reads the "x/y" floor value from the building section.
func parseFloorInfo(doc *goquery.Document, listing *model.Listing) {
	var floorText string
	doc.Find(selBuildingDetail).EachWithBreak(func(_ int, section *goquery.Selection) bool {
		if strings.TrimSpace(section.Find("span").First().Text()) != labelFloor {
			return true
		}
		floorText = strings.TrimSpace(section.Find(selBuildingValue).First().Text())
		return false
	})

	if floorText == "" {
		return
	}

	parts := strings.Split(floorText, "/")
	if len(parts) != 2 {
		slog.Warn("Invalid floor format on detail page",
			"url", listing.URL,
			"text", floorText)
		return
	}

	current, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return
	}

	listing.Specs.Features.CurrentFloor = &current
	listing.Specs.Features.TotalFloors = &total
}

// parseFeatures reads the in-property toggle grid. Disabled toggles render
// with an extra class; only enabled ones set a flag.
func parseFeatures(doc *goquery.Document, listing *model.Listing) {
	section := doc.Find(selFeatureSection).First()
	items := section.Find(selFeatureItem)
	if items.Length() == 0 {
		slog.Warn("No features found on detail page", "url", listing.URL)
		return
	}

	features := &listing.Specs.Features
	items.Each(func(_ int, item *goquery.Selection) {
		classes, _ := item.Attr("class")
		if strings.Contains(classes, featureDisabled) {
			return
		}

		switch strings.TrimSpace(item.Find(selFeatureText).First().Text()) {
		case labelElevator:
			features.HasElevator = true
		case labelMamad:
			features.HasMamad = true
		case labelBalcony:
			features.HasBalcony = true
		case labelStorage:
			features.HasStorage = true
		}
	})
}

// parseParking reads the parking count from the detail definition list.
func parseParking(doc *goquery.Document, listing *model.Listing) {
	doc.Find("dd").EachWithBreak(func(_ int, dd *goquery.Selection) bool {
		if strings.TrimSpace(dd.Text()) != labelParking {
			return true
		}

		count, err := strconv.Atoi(strings.TrimSpace(dd.Next().Text()))
		if err == nil && count > 0 {
			listing.Specs.Features.HasParking = true
		}
		return false
	})
}

// parseContact reads the revealed seller contact block. The block only
// exists after the show-details button has been clicked.
func parseContact(doc *goquery.Document, listing *model.Listing) {
	info := doc.Find(selContactInfo).First()
	if info.Length() == 0 {
		return
	}

	name := strings.TrimSpace(info.Find(selContactName).First().Text())
	phone := strings.TrimSpace(info.Find(selContactPhone).First().Text())
	if name == "" && phone == "" {
		return
	}

	listing.Contact = &model.Contact{Name: name, Phone: phone}
}
