package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/xabinapal/shunctl/internal/config"
)

func newTestNotifier(t *testing.T, cfg config.NotificationConfig, mock *mockBackend) *notifier {
	t.Helper()
	nt := New(cfg, WithBackend(mock))
	n, ok := nt.(*notifier)
	if !ok {
		t.Fatalf("expected notifier, got %T", nt)
	}
	return n
}

func TestNotifyPrompt(t *testing.T) {
	mock := &mockBackend{}
	n := newTestNotifier(t, config.NotificationConfig{Enabled: true, OnPrompt: true}, mock)

	if err := n.NotifyPrompt("EdgeASA", "enable_password"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.notifyCalls) != 1 {
		t.Fatalf("expected 1 notify call, got %d", len(mock.notifyCalls))
	}
	call := mock.notifyCalls[0]
	if call.title != "shunctl: Credential Required" {
		t.Errorf("unexpected title %q", call.title)
	}
	want := "Enter the enable_password for 'EdgeASA' in the terminal."
	if call.message != want {
		t.Errorf("expected message %q, got %q", want, call.message)
	}
	if call.iconPath != "" {
		t.Errorf("expected empty iconPath, got %q", call.iconPath)
	}
}

func TestNotifyPromptDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotificationConfig
	}{
		{"global off", config.NotificationConfig{Enabled: false, OnPrompt: true}},
		{"prompt off", config.NotificationConfig{Enabled: true, OnPrompt: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockBackend{}
			n := newTestNotifier(t, tt.cfg, mock)

			if err := n.NotifyPrompt("EdgeASA", "password"); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if len(mock.notifyCalls) != 0 {
				t.Errorf("expected no notify calls, got %d", len(mock.notifyCalls))
			}
		})
	}
}

func TestNotifyFailure(t *testing.T) {
	mock := &mockBackend{}
	n := newTestNotifier(t, config.NotificationConfig{Enabled: true, OnFailure: true}, mock)

	if err := n.NotifyFailure("CoreASA", errors.New("missing address")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(mock.alertCalls) != 1 {
		t.Fatalf("expected 1 alert call, got %d", len(mock.alertCalls))
	}
	call := mock.alertCalls[0]
	if call.title != "shunctl: Profile Failed" {
		t.Errorf("unexpected title %q", call.title)
	}
	if !strings.Contains(call.message, "'CoreASA'") || !strings.Contains(call.message, "missing address") {
		t.Errorf("unexpected message %q", call.message)
	}
}

func TestNotifyFailureDisabled(t *testing.T) {
	mock := &mockBackend{}
	n := newTestNotifier(t, config.NotificationConfig{Enabled: true, OnFailure: false}, mock)

	if err := n.NotifyFailure("CoreASA", errors.New("x")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(mock.alertCalls) != 0 {
		t.Errorf("expected no alert calls, got %d", len(mock.alertCalls))
	}
}

func TestNotifyBackendError(t *testing.T) {
	backendErr := errors.New("no notification daemon")
	mock := &mockBackend{
		notifyFunc: func(string, string, string) error { return backendErr },
		alertFunc:  func(string, string, string) error { return backendErr },
	}
	n := newTestNotifier(t, config.NotificationConfig{Enabled: true, OnPrompt: true, OnFailure: true}, mock)

	if err := n.NotifyPrompt("EdgeASA", "password"); !errors.Is(err, backendErr) {
		t.Errorf("expected backend error from NotifyPrompt, got %v", err)
	}
	if err := n.NotifyFailure("EdgeASA", errors.New("x")); !errors.Is(err, backendErr) {
		t.Errorf("expected backend error from NotifyFailure, got %v", err)
	}
}

func TestNop(t *testing.T) {
	n := Nop()
	if err := n.NotifyPrompt("EdgeASA", "password"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := n.NotifyFailure("EdgeASA", errors.New("x")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
