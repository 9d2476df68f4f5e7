package model

// StreetMatch is the result of an address catalog lookup. It is recomputed
// per query and never persisted.
type StreetMatch struct {
	Constraint   string
	Neighborhood string
	City         string
	IsAllowed    bool
}

// SavedItem is one ledger record: an item that has already been dispatched.
type SavedItem struct {
	ItemID string
	URL    string
}
