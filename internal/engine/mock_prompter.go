package engine

import (
	"context"
	"sync"

	"github.com/nadavh/aptwatch/internal/model"
)

// MockPrompter is a test implementation of the Prompter interface. By
// default it approves everything; individual listings can be scripted to
// be rejected at either gate or skipped at the constraint/unsupported
// prompts.
type MockPrompter struct {
	rejectSend         map[string]bool
	rejectFormat       map[string]bool
	declineConstraint  map[string]bool
	processUnsupported map[string]bool
	sendCalls          []string
	formatCalls        []string
	constraintCalls    []string
	unsupportedCalls   []string
	autoRejects        []string
	mu                 sync.Mutex
}

// NewMockPrompter creates a mock prompter that approves everything.
func NewMockPrompter() *MockPrompter {
	return &MockPrompter{
		rejectSend:         make(map[string]bool),
		rejectFormat:       make(map[string]bool),
		declineConstraint:  make(map[string]bool),
		processUnsupported: make(map[string]bool),
	}
}

// RejectSend scripts a first-gate rejection for the given item id.
func (m *MockPrompter) RejectSend(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectSend[itemID] = true
}

// RejectFormat scripts a second-gate rejection for the given item id.
func (m *MockPrompter) RejectFormat(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectFormat[itemID] = true
}

// DeclineConstraint scripts a constraint-prompt decline for the given item id.
func (m *MockPrompter) DeclineConstraint(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declineConstraint[itemID] = true
}

// ProcessUnsupported scripts "do not skip" for an unsupported item id.
func (m *MockPrompter) ProcessUnsupported(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processUnsupported[itemID] = true
}

// ConfirmSend records the call and answers per script (approve by default).
func (m *MockPrompter) ConfirmSend(_ context.Context, listing *model.Listing, _ model.StreetMatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, listing.ItemID)
	return !m.rejectSend[listing.ItemID], nil
}

// ConfirmConstraint records the call and answers per script (proceed by default).
func (m *MockPrompter) ConfirmConstraint(_ context.Context, listing *model.Listing, _ model.StreetMatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraintCalls = append(m.constraintCalls, listing.ItemID)
	return !m.declineConstraint[listing.ItemID], nil
}

// ConfirmUnsupportedSkip records the call; skips unless scripted otherwise.
func (m *MockPrompter) ConfirmUnsupportedSkip(_ context.Context, listing *model.Listing) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsupportedCalls = append(m.unsupportedCalls, listing.ItemID)
	return !m.processUnsupported[listing.ItemID], nil
}

// ConfirmFormat records the call and answers per script (approve by default).
func (m *MockPrompter) ConfirmFormat(_ context.Context, listing *model.Listing, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formatCalls = append(m.formatCalls, listing.ItemID)
	return !m.rejectFormat[listing.ItemID], nil
}

// NotifyAutoReject records the auto-rejection.
func (m *MockPrompter) NotifyAutoReject(listing *model.Listing, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoRejects = append(m.autoRejects, listing.ItemID)
}

// BatchProgress is a no-op for the mock.
func (m *MockPrompter) BatchProgress(_ string, _, _ int) {}

// SendCalls returns the item ids that reached the first approval gate, in order.
func (m *MockPrompter) SendCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sendCalls...)
}

// FormatCalls returns the item ids that reached the second approval gate.
func (m *MockPrompter) FormatCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.formatCalls...)
}

// ConstraintCalls returns the item ids that hit the constraint prompt.
func (m *MockPrompter) ConstraintCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.constraintCalls...)
}

// UnsupportedCalls returns the item ids that hit the unsupported prompt.
func (m *MockPrompter) UnsupportedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.unsupportedCalls...)
}

// AutoRejects returns the item ids rejected without prompting.
func (m *MockPrompter) AutoRejects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.autoRejects...)
}
