// Package address answers whether a scraped street is on the allow-list.
package address

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nadavh/aptwatch/internal/common"
)

// CatalogStreet is one allow-listed street, optionally carrying a free-text
// constraint (e.g. "even numbers only") that the operator must confirm.
type CatalogStreet struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// CatalogNeighborhood groups streets under a neighborhood.
type CatalogNeighborhood struct {
	Neighborhood string          `json:"neighborhood"`
	Streets      []CatalogStreet `json:"streets"`
}

// CatalogCity groups neighborhoods under a city.
type CatalogCity struct {
	City          string                `json:"city"`
	Neighborhoods []CatalogNeighborhood `json:"neighborhoods"`
}

// LoadCatalog parses the street catalog file. A missing or malformed file is
// fatal to startup; the caller should not retry.
func LoadCatalog(path string) ([]CatalogCity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCatalogUnreadable, path, err)
	}

	var cities []CatalogCity
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCatalogMalformed, path, err)
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: %s: no cities defined", common.ErrCatalogMalformed, path)
	}

	return cities, nil
}
