// Package model defines the domain types shared across the application.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Location describes where a listing is situated. City and Street are always
// present; Neighborhood and Area depend on how much the feed page exposed.
type Location struct {
	City         string
	Street       string
	Neighborhood string
	Area         string
}

// PropertyFeatures holds the detail-page feature toggles and floor data.
// Floor fields are pointers because the detail page frequently omits them.
type PropertyFeatures struct {
	CurrentFloor *int
	TotalFloors  *int
	HasElevator  bool
	HasParking   bool
	HasMamad     bool
	HasBalcony   bool
	HasStorage   bool
}

// PropertySpecs holds the summary-row specs plus enriched features.
type PropertySpecs struct {
	Rooms    float64
	Floor    int
	SizeSqm  int
	Features PropertyFeatures
}

// Contact is the seller contact revealed on a private listing's detail page.
type Contact struct {
	Name  string
	Phone string
}

// Listing is the unit of work: one scraped real-estate item.
// ItemID and URL are immutable once created; Specs and Contact are filled in
// by enrichment.
type Listing struct {
	ItemID        string
	URL           string
	AgencyName    string
	Location      Location
	Specs         PropertySpecs
	Contact       *Contact
	Tags          []string
	Price         int
	IsSavedRemote bool
	IsAgency      bool
}

// IsTopFloor reports whether enrichment found the apartment on the
// building's last floor. False when floor data is missing.
func (l *Listing) IsTopFloor() bool {
	f := l.Specs.Features
	return f.CurrentFloor != nil && f.TotalFloors != nil && *f.CurrentFloor == *f.TotalFloors
}

// FormatListing renders the canonical one-line Hebrew summary used as the
// notification subject:
// street, neighborhood, city, rooms, floor x/y, features, price-in-thousands
// - listing type - contact.
func (l *Listing) FormatListing() string {
	var mainParts []string

	locationParts := []string{l.Location.Street}
	if l.Location.Neighborhood != "" {
		locationParts = append(locationParts, l.Location.Neighborhood)
	}
	locationParts = append(locationParts, l.Location.City)
	mainParts = append(mainParts, strings.Join(locationParts, ", "))

	if l.Specs.Rooms > 0 {
		mainParts = append(mainParts, strconv.FormatFloat(l.Specs.Rooms, 'f', -1, 64)+" חד׳")
	}

	f := l.Specs.Features
	if f.CurrentFloor != nil && f.TotalFloors != nil {
		mainParts = append(mainParts, fmt.Sprintf("קומה %d/%d", *f.CurrentFloor, *f.TotalFloors))
	}

	if f.HasElevator {
		mainParts = append(mainParts, "מעלית")
	}
	if f.HasParking {
		mainParts = append(mainParts, "חניה")
	}
	if f.HasMamad {
		mainParts = append(mainParts, "ממ״ד")
	}
	if f.HasStorage {
		mainParts = append(mainParts, "מחסן")
	}
	if f.HasBalcony {
		mainParts = append(mainParts, "מרפסת")
	}

	if l.Price > 0 {
		mainParts = append(mainParts, strconv.Itoa(l.Price/1000))
	}

	endParts := make([]string, 0, 2)
	if l.IsAgency {
		endParts = append(endParts, "מתיווך")
	} else {
		endParts = append(endParts, "פרטי")
	}

	if l.Contact != nil {
		contact := l.Contact.Phone
		if l.Contact.Name != "" {
			contact = l.Contact.Name + " " + l.Contact.Phone
		}
		endParts = append(endParts, contact)
	}

	return strings.Join(mainParts, ", ") + " - " + strings.Join(endParts, " - ")
}
