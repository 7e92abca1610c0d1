package notify

import "sync"

// mockBackend records notifications instead of showing them.
type mockBackend struct {
	mu          sync.Mutex
	notifyFunc  func(title, message, iconPath string) error
	alertFunc   func(title, message, iconPath string) error
	notifyCalls []notifyCall
	alertCalls  []notifyCall
}

type notifyCall struct {
	title    string
	message  string
	iconPath string
}

func (m *mockBackend) Notify(title, message, iconPath string) error {
	m.mu.Lock()
	m.notifyCalls = append(m.notifyCalls, notifyCall{title, message, iconPath})
	m.mu.Unlock()
	if m.notifyFunc != nil {
		return m.notifyFunc(title, message, iconPath)
	}
	return nil
}

func (m *mockBackend) Alert(title, message, iconPath string) error {
	m.mu.Lock()
	m.alertCalls = append(m.alertCalls, notifyCall{title, message, iconPath})
	m.mu.Unlock()
	if m.alertFunc != nil {
		return m.alertFunc(title, message, iconPath)
	}
	return nil
}

var _ Backend = (*mockBackend)(nil)
