package fakestore

import (
	"context"
	"slices"
	"sync"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// MockClient implements dashboard.UserSource from in-memory fixtures.
type MockClient struct {
	mu    sync.RWMutex
	users []dashboard.SourceUser
	err   error
	calls int
}

// NewMockClient builds a mock source returning users.
func NewMockClient(users ...dashboard.SourceUser) *MockClient {
	return &MockClient{users: slices.Clone(users)}
}

// FailWith makes subsequent fetches return err; nil restores the fixtures.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls reports how many fetches were made.
func (c *MockClient) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

// FetchUsers returns a copy of the fixtures.
func (c *MockClient) FetchUsers(context.Context) ([]dashboard.SourceUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return slices.Clone(c.users), nil
}

// SampleUsers mirrors a few FakeStore users for demos and offline runs.
func SampleUsers() []dashboard.SourceUser {
	return []dashboard.SourceUser{
		{ID: 1, FirstName: "john", LastName: "doe", Email: "john@gmail.com", Phone: "1-570-236-7033"},
		{ID: 2, FirstName: "david", LastName: "morrison", Email: "morrison@gmail.com", Phone: "1-570-236-7033"},
		{ID: 3, FirstName: "kevin", LastName: "ryan", Email: "kevin@gmail.com", Phone: "1-567-094-1345"},
		{ID: 4, FirstName: "don", LastName: "romer", Email: "don@gmail.com", Phone: "1-765-789-6734"},
		{ID: 5, FirstName: "derek", LastName: "powell", Email: "derek@gmail.com", Phone: "1-956-001-1945"},
		{ID: 6, FirstName: "david", LastName: "russell", Email: "david_r@gmail.com", Phone: "1-678-345-9856"},
		{ID: 7, FirstName: "miriam", LastName: "snyder", Email: "miriam@gmail.com", Phone: "1-123-943-0563"},
		{ID: 8, FirstName: "william", LastName: "hopkins", Email: "william@gmail.com", Phone: "1-478-001-0890"},
		{ID: 9, FirstName: "kate", LastName: "hale", Email: "kate@gmail.com", Phone: "1-678-456-1934"},
		{ID: 10, FirstName: "jimmie", LastName: "klein", Email: "jimmie@gmail.com", Phone: "1-104-001-4567"},
	}
}
