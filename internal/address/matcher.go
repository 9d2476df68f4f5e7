package address

import (
	"log/slog"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/nadavh/aptwatch/internal/model"
)

// fuzzyThreshold is the minimum 0-100 similarity ratio accepted when no
// exact catalog entry matches.
const fuzzyThreshold = 85

type catalogEntry struct {
	name         string
	normalized   string
	constraint   string
	neighborhood string
	city         string
}

type cityIndex struct {
	exact map[string]*catalogEntry
	// entries preserves catalog order so fuzzy tie-breaks are deterministic.
	entries []*catalogEntry
}

// Matcher answers whether a street is allow-listed, scoped by city. It is
// built once at startup from immutable catalog data and is safe for
// concurrent reads.
type Matcher struct {
	cities map[string]*cityIndex
}

// NewMatcher builds the lookup index from a parsed catalog.
func NewMatcher(catalog []CatalogCity) *Matcher {
	m := &Matcher{cities: make(map[string]*cityIndex)}

	for _, city := range catalog {
		cityKey := Normalize(city.City)
		idx, ok := m.cities[cityKey]
		if !ok {
			idx = &cityIndex{exact: make(map[string]*catalogEntry)}
			m.cities[cityKey] = idx
		}

		for _, neighborhood := range city.Neighborhoods {
			for _, street := range neighborhood.Streets {
				entry := &catalogEntry{
					name:         street.Name,
					normalized:   Normalize(street.Name),
					constraint:   street.Constraint,
					neighborhood: neighborhood.Neighborhood,
					city:         city.City,
				}
				idx.entries = append(idx.entries, entry)
				if _, exists := idx.exact[entry.normalized]; !exists {
					idx.exact[entry.normalized] = entry
				}
			}
		}
	}

	return m
}

// NewMatcherFromFile loads the catalog file and builds a matcher from it.
func NewMatcherFromFile(path string) (*Matcher, error) {
	catalog, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewMatcher(catalog), nil
}

// Match looks up a scraped street within the given city. A trailing house
// number on the query is ignored. An exact hit on the normalized name wins;
// otherwise the best fuzzy candidate in the same city is accepted when its
// ratio reaches the threshold, first-encountered winning ties. Absence is a
// normal outcome, never an error.
func (m *Matcher) Match(street, city string) model.StreetMatch {
	idx, ok := m.cities[Normalize(city)]
	if !ok {
		slog.Debug("City not in catalog", "city", city)
		return model.StreetMatch{IsAllowed: false}
	}

	query := Normalize(StripHouseNumber(street))
	if query == "" {
		return model.StreetMatch{IsAllowed: false}
	}

	if entry, exact := idx.exact[query]; exact {
		return matchResult(entry)
	}

	var best *catalogEntry
	bestRatio := 0
	for _, entry := range idx.entries {
		ratio := fuzzy.Ratio(query, entry.normalized)
		if ratio >= fuzzyThreshold && ratio > bestRatio {
			bestRatio = ratio
			best = entry
		}
	}

	if best == nil {
		slog.Debug("Street not in catalog", "street", street, "city", city)
		return model.StreetMatch{IsAllowed: false}
	}

	slog.Debug("Street matched fuzzily",
		"street", street,
		"matched", best.name,
		"ratio", bestRatio,
		"city", best.city)

	return matchResult(best)
}

func matchResult(entry *catalogEntry) model.StreetMatch {
	return model.StreetMatch{
		IsAllowed:    true,
		Constraint:   entry.constraint,
		Neighborhood: entry.neighborhood,
		City:         entry.city,
	}
}
