package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/nadavh/aptwatch/internal/model"
)

// memLedger is an in-memory service.Ledger for engine tests.
type memLedger struct {
	items     map[string]string
	upsertErr error
	existsErr error
	mu        sync.Mutex
	upsertLog []string
}

func newMemLedger() *memLedger {
	return &memLedger{items: make(map[string]string)}
}

func (l *memLedger) Upsert(_ context.Context, itemID, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.upsertErr != nil {
		return l.upsertErr
	}
	l.items[itemID] = url
	l.upsertLog = append(l.upsertLog, itemID)
	return nil
}

func (l *memLedger) Exists(_ context.Context, itemID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.existsErr != nil {
		return false, l.existsErr
	}
	_, ok := l.items[itemID]
	return ok, nil
}

func (l *memLedger) All(_ context.Context) ([]model.SavedItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]model.SavedItem, 0, len(l.items))
	for id, url := range l.items {
		items = append(items, model.SavedItem{ItemID: id, URL: url})
	}
	return items, nil
}

func (l *memLedger) Close() error { return nil }

func (l *memLedger) url(itemID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[itemID]
}

// fakeScraper records Save/Enrich calls and simulates the remote saved flag.
type fakeScraper struct {
	savedRemote map[string]bool
	enrichWith  map[string]model.PropertyFeatures
	enrichErr   map[string]error
	saveErr     error
	enriched    []string
	mu          sync.Mutex
}

func newFakeScraper() *fakeScraper {
	return &fakeScraper{
		savedRemote: make(map[string]bool),
		enrichWith:  make(map[string]model.PropertyFeatures),
		enrichErr:   make(map[string]error),
	}
}

func (s *fakeScraper) NavigateTo(_ context.Context, _ string) error { return nil }

func (s *fakeScraper) FetchFeed(_ context.Context) ([]model.FeedEntry, error) {
	return nil, errors.New("not implemented in fake")
}

func (s *fakeScraper) Save(_ context.Context, listing *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedRemote[listing.ItemID] = true
	return nil
}

func (s *fakeScraper) Enrich(_ context.Context, listing *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enrichErr[listing.ItemID]; err != nil {
		return err
	}
	if features, ok := s.enrichWith[listing.ItemID]; ok {
		listing.Specs.Features = features
	}
	s.enriched = append(s.enriched, listing.ItemID)
	return nil
}

func (s *fakeScraper) remoteSaved(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedRemote[itemID]
}

// fakeNotifier records sends and can be scripted to fail.
type fakeNotifier struct {
	sendErr  error
	subjects []string
	bodies   []string
	mu       sync.Mutex
}

func (n *fakeNotifier) Send(_ context.Context, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *fakeNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.subjects...)
}

// stubMatcher allows streets by a fixed table.
type stubMatcher struct {
	allowed map[string]model.StreetMatch
}

func (m *stubMatcher) Match(street, _ string) model.StreetMatch {
	if match, ok := m.allowed[street]; ok {
		return match
	}
	return model.StreetMatch{IsAllowed: false}
}
