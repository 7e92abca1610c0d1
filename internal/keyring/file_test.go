package keyring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}

	if availErr := store.IsAvailable(); availErr != nil {
		t.Errorf("IsAvailable() should not error: %v", availErr)
	}

	if setErr := store.Set("EdgeASA", "password", "s3cret"); setErr != nil {
		t.Errorf("Set() failed: %v", setErr)
	}

	value, err := store.Get("EdgeASA", "password")
	if err != nil {
		t.Errorf("Get() failed: %v", err)
	}
	if value != "s3cret" {
		t.Errorf("Get() = %s, want s3cret", value)
	}

	// Fields of the same target are independent
	_, err = store.Get("EdgeASA", "enable_password")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get(enable_password) should return ErrSecretNotFound, got %v", err)
	}

	if delErr := store.Delete("EdgeASA", "password"); delErr != nil {
		t.Errorf("Delete() failed: %v", delErr)
	}

	_, err = store.Get("EdgeASA", "password")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get() after Delete() should return ErrSecretNotFound, got %v", err)
	}

	if err := store.Delete("EdgeASA", "password"); err != nil {
		t.Errorf("Delete(non-existent) should not error: %v", err)
	}
}

func TestFileStoreEmptyDir(t *testing.T) {
	_, err := NewFileStore("")
	if err == nil {
		t.Error("NewFileStore('') should fail")
	}
}

func TestFileStoreEmptyKey(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())

	if err := store.Set("", "password", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Set with empty target should return ErrInvalidKey, got %v", err)
	}

	if _, err := store.Get("EdgeASA", ""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Get with empty field should return ErrInvalidKey, got %v", err)
	}
}

func TestFileStorePersistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, _ := NewFileStore(tmpDir)
	if err := store1.Set("CoreASA", "password", "persisted"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	store2, _ := NewFileStore(tmpDir)
	value, err := store2.Get("CoreASA", "password")
	if err != nil {
		t.Fatalf("Get() from second store failed: %v", err)
	}
	if value != "persisted" {
		t.Errorf("secret not persisted: got %s, want persisted", value)
	}
}

func TestFileStoreIsAvailableNotDir(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(filePath, []byte("not a dir"), 0600); err != nil {
		t.Fatal(err)
	}

	store := &FileStore{dir: filePath}
	if err := store.IsAvailable(); err == nil {
		t.Error("IsAvailable() should fail for non-directory")
	}
}

func TestFileStorePathTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}

	targets := []string{
		"../etc/passwd",
		"../../..",
		"foo/../../../etc/passwd",
	}

	for _, target := range targets {
		if err := store.Set(target, "password", "test-value"); err != nil {
			t.Errorf("Set(%q) failed: %v", target, err)
		}

		files, _ := filepath.Glob(filepath.Join(tmpDir, "*"))
		absDir, _ := filepath.Abs(tmpDir)
		for _, f := range files {
			absFile, _ := filepath.Abs(f)
			if !strings.HasPrefix(absFile, absDir) {
				t.Errorf("file %q escaped from directory %q", absFile, absDir)
			}
		}

		val, err := store.Get(target, "password")
		if err != nil {
			t.Errorf("Get(%q) failed: %v", target, err)
		}
		if val != "test-value" {
			t.Errorf("Get(%q) = %q, want test-value", target, val)
		}
	}
}

func TestDefaultStoreWithTestEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(TestKeyringEnvVar, tmpDir)

	store := DefaultStore()

	if _, ok := store.(*FileStore); !ok {
		t.Errorf("DefaultStore() should return FileStore when %s is set, got %T", TestKeyringEnvVar, store)
	}

	if err := store.Set("test", "password", "value"); err != nil {
		t.Errorf("Set() failed: %v", err)
	}

	val, err := store.Get("test", "password")
	if err != nil {
		t.Errorf("Get() failed: %v", err)
	}
	if val != "value" {
		t.Errorf("Get() = %s, want value", val)
	}
}
