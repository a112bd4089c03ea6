package sheets

import (
	"context"
	"sync"
)

// MockClient is an in-memory Client for tests.
type MockClient struct {
	// UpdateFunc, when set, runs before an update is recorded; a non-nil error fails the call.
	UpdateFunc    func(rng string, values [][]any) error
	Updates       []UpdateCall
	Cleared       []string
	SpreadsheetID string
	EnsureCalls   int
	mu            sync.Mutex
}

// UpdateCall records one Update.
type UpdateCall struct {
	Range  string
	Values [][]any
}

// NewMockClient creates a mock that reports the given spreadsheet id.
func NewMockClient(id string) *MockClient {
	return &MockClient{SpreadsheetID: id}
}

// EnsureSpreadsheet implements Client.
func (m *MockClient) EnsureSpreadsheet(_ context.Context, id, _, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnsureCalls++
	if id != "" {
		return id, nil
	}
	return m.SpreadsheetID, nil
}

// Clear implements Client.
func (m *MockClient) Clear(_ context.Context, _, rng string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Cleared = append(m.Cleared, rng)
	return nil
}

// Update implements Client.
func (m *MockClient) Update(_ context.Context, _, rng string, values [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(rng, values); err != nil {
			return err
		}
	}
	m.Updates = append(m.Updates, UpdateCall{Range: rng, Values: values})
	return nil
}

// Rows returns every row written, in order.
func (m *MockClient) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows [][]any
	for _, u := range m.Updates {
		rows = append(rows, u.Values...)
	}
	return rows
}
