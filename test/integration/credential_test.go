//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCredentialRoundTrip(t *testing.T) {
	env := NewTestEnv(t, fleet)

	res := env.RunWithInput("vault-secret\n", "credential", "set", "VaultASA")
	if res.ExitCode != 0 {
		t.Fatalf("credential set failed (%d): %s", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stderr, "Password for VaultASA: ") {
		t.Errorf("expected prompt on stderr, got %q", res.Stderr)
	}

	entries, err := os.ReadDir(env.KeyringDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one keyring entry, got %d", len(entries))
	}

	res = env.Run("validate", "VaultASA", "--no-prompt", "-o", "json")
	if res.ExitCode != 0 {
		t.Fatalf("validate with stored credential failed (%d): %s%s", res.ExitCode, res.Stdout, res.Stderr)
	}
	if !strings.Contains(res.Stdout, `"password": "keyring"`) {
		t.Errorf("password should come from the keyring:\n%s", res.Stdout)
	}
	if strings.Contains(res.Stdout+res.Stderr, "vault-secret") {
		t.Error("output leaked a secret")
	}

	res = env.Run("credential", "delete", "VaultASA")
	if res.ExitCode != 0 {
		t.Fatalf("credential delete failed: %s", res.Stderr)
	}
	if _, err := os.Stat(filepath.Join(env.KeyringDir, entries[0].Name())); !os.IsNotExist(err) {
		t.Errorf("keyring entry should be gone: %v", err)
	}
}

func TestPromptFromPipe(t *testing.T) {
	env := NewTestEnv(t, fleet)

	res := env.RunWithInput("typed-secret\n", "validate", "VaultASA")
	if res.ExitCode != 0 {
		t.Fatalf("validate with piped password failed (%d): %s", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "[OK] VaultASA") {
		t.Errorf("unexpected output:\n%s", res.Stdout)
	}

	res = env.Run("validate", "VaultASA")
	if res.ExitCode != 4 {
		t.Errorf("empty stdin should be a missing credential, got %d", res.ExitCode)
	}
}

func TestDoctor(t *testing.T) {
	env := NewTestEnv(t, fleet)

	res := env.Run("doctor")
	if res.ExitCode == 0 {
		t.Error("doctor should fail with broken targets")
	}
	for _, want := range []string{"Profile store", "Keyring", "file-based (test mode)", "[OK] Target OtherASA", "[!!] Target VaultASA", "[XX] Target BrokenASA"} {
		if !strings.Contains(res.Stdout, want) {
			t.Errorf("doctor output missing %q:\n%s", want, res.Stdout)
		}
	}
}

func TestConfigInit(t *testing.T) {
	env := NewTestEnv(t, "")

	res := env.Run("config", "init")
	if res.ExitCode != 0 {
		t.Fatalf("config init failed: %s", res.Stderr)
	}
	if _, err := os.Stat(env.ProfilesPath()); err != nil {
		t.Fatalf("profile store not created: %v", err)
	}

	res = env.Run("targets")
	if res.ExitCode != 0 {
		t.Errorf("sample store should load: %s", res.Stderr)
	}
}
