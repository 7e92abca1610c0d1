package keyring

import "sync"

// MockStore is an in-memory keyring implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	data    map[string]string
	failing bool
	gets    int
}

// NewMockStore creates a new mock keyring store.
func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]string),
	}
}

func mockKey(target, field string) string {
	return target + "\x00" + field
}

// SetFailing makes all operations fail.
func (m *MockStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// IsAvailable implements Store.
func (m *MockStore) IsAvailable() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing {
		return ErrKeyringUnavailable
	}
	return nil
}

// Set implements Store.
func (m *MockStore) Set(target, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrKeyringUnavailable
	}
	if target == "" || field == "" {
		return ErrInvalidKey
	}

	m.data[mockKey(target, field)] = value
	return nil
}

// Get implements Store.
func (m *MockStore) Get(target, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.failing {
		return "", ErrKeyringUnavailable
	}

	value, ok := m.data[mockKey(target, field)]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

// Delete implements Store.
func (m *MockStore) Delete(target, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrKeyringUnavailable
	}

	delete(m.data, mockKey(target, field))
	return nil
}

// Count returns the number of stored secrets.
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Gets returns how many lookups were made.
func (m *MockStore) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}
