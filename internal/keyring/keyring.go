// Package keyring stores operator-provided device secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/xabinapal/shunctl/internal/utils"
)

const (
	// ServicePrefix is the prefix used for keyring service names.
	// Each target gets its own service entry: "shunctl - <target>",
	// with one account per secret field.
	ServicePrefix = "shunctl"

	// TestKeyringEnvVar is the environment variable that, when set to a directory path,
	// causes shunctl to use a file-based keyring instead of the OS keyring.
	// This is intended for testing purposes only and should NEVER be used in production.
	TestKeyringEnvVar = "SHUNCTL_TEST_KEYRING_DIR"
)

// serviceName returns the keyring service name for a target.
func serviceName(target string) string {
	return ServicePrefix + " - " + target
}

var (
	// ErrKeyringUnavailable is returned when no secure keyring is available.
	ErrKeyringUnavailable = errors.New("secure keyring is not available on this system")
	// ErrSecretNotFound is returned when no secret is stored for a target field.
	ErrSecretNotFound = errors.New("secret not found in keyring")
	// ErrKeyringAccessDenied is returned when access to the keyring is denied.
	ErrKeyringAccessDenied = errors.New("access to keyring denied")
	// ErrInvalidKey is returned for an empty target or field name.
	ErrInvalidKey = errors.New("target and field are required")
)

// Store is a secret storage backend addressed by target and field
// (e.g. "EdgeASA", "enable_password").
type Store interface {
	// Set stores a secret.
	Set(target, field, value string) error
	// Get retrieves a secret. It returns ErrSecretNotFound when nothing is stored.
	Get(target, field string) (string, error)
	// Delete removes a secret. Deleting a missing secret is not an error.
	Delete(target, field string) error
	// IsAvailable checks if the keyring is available.
	IsAvailable() error
}

// DefaultStore returns the default keyring store for the current platform.
// If SHUNCTL_TEST_KEYRING_DIR is set, a file-based store is used instead.
func DefaultStore() Store {
	if testDir := os.Getenv(TestKeyringEnvVar); testDir != "" {
		fileStore, err := NewFileStore(testDir)
		if err != nil {
			return &osKeyring{}
		}
		return fileStore
	}
	return &osKeyring{}
}

// osKeyring implements Store using the OS keyring.
type osKeyring struct{}

// IsAvailable checks if a secure keyring is available on this system.
func (k *osKeyring) IsAvailable() error {
	// ErrNotFound on a probe key means the keyring itself answered.
	_, err := gokeyring.Get(serviceName("__availability_check__"), "probe")
	if err == nil || errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}

	errStr := err.Error()
	switch runtime.GOOS {
	case "linux":
		if utils.ContainsAny(errStr, "secret service", "dbus", "org.freedesktop.secrets") {
			return fmt.Errorf("%w: D-Bus secret service not available - please install and start gnome-keyring, kwallet, or another secret service provider", ErrKeyringUnavailable)
		}
	case "darwin":
		if utils.ContainsAny(errStr, "keychain", "security") {
			return fmt.Errorf("%w: macOS Keychain not accessible", ErrKeyringUnavailable)
		}
	case "windows":
		if utils.ContainsAny(errStr, "credential", "wincred") {
			return fmt.Errorf("%w: Windows Credential Manager not accessible", ErrKeyringUnavailable)
		}
	}

	// Unknown probe errors are left for the real operation to report.
	return nil
}

// Set stores a secret in the keyring.
func (k *osKeyring) Set(target, field, value string) error {
	if target == "" || field == "" {
		return ErrInvalidKey
	}
	if value == "" {
		return errors.New("secret cannot be empty")
	}
	if err := k.IsAvailable(); err != nil {
		return err
	}

	if err := gokeyring.Set(serviceName(target), field, value); err != nil {
		return wrapKeyringError(err, "failed to store secret")
	}
	return nil
}

// Get retrieves a secret from the keyring.
func (k *osKeyring) Get(target, field string) (string, error) {
	if target == "" || field == "" {
		return "", ErrInvalidKey
	}
	if err := k.IsAvailable(); err != nil {
		return "", err
	}

	value, err := gokeyring.Get(serviceName(target), field)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrSecretNotFound
		}
		return "", wrapKeyringError(err, "failed to retrieve secret")
	}
	return value, nil
}

// Delete removes a secret from the keyring.
func (k *osKeyring) Delete(target, field string) error {
	if target == "" || field == "" {
		return ErrInvalidKey
	}
	if err := k.IsAvailable(); err != nil {
		return err
	}

	if err := gokeyring.Delete(serviceName(target), field); err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return nil
		}
		return wrapKeyringError(err, "failed to delete secret")
	}
	return nil
}

// wrapKeyringError wraps a keyring error with context.
func wrapKeyringError(err error, context string) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if utils.ContainsAny(errStr, "denied", "permission", "not allowed", "unauthorized") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringAccessDenied, context, err)
	}

	if utils.ContainsAny(errStr, "not found", "no keyring", "unavailable", "secret service") {
		return fmt.Errorf("%w: %s: %v", ErrKeyringUnavailable, context, err)
	}

	return fmt.Errorf("%s: %w", context, err)
}
