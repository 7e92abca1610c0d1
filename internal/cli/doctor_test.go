package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status CheckStatus
		str    string
		icon   string
	}{
		{CheckOK, "OK", "[OK]"},
		{CheckWarning, "WARN", "[!!]"},
		{CheckError, "ERROR", "[XX]"},
		{CheckSkipped, "SKIP", "[--]"},
		{CheckStatus(99), "UNKNOWN", "[??]"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.status.Icon(); got != tt.icon {
			t.Errorf("Icon() = %q, want %q", got, tt.icon)
		}
	}

	data, err := json.Marshal(CheckWarning)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"WARN"` {
		t.Errorf("MarshalJSON() = %s", data)
	}
}

func TestDoctorReportsTargets(t *testing.T) {
	env := newTestEnv(t, testProfiles)

	out, _, err := env.run("doctor", "-o", "json")
	if err == nil {
		t.Fatal("doctor should fail with a broken target")
	}

	var result DoctorOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !result.HasErrors || !result.HasWarnings {
		t.Errorf("unexpected summary: %+v", result)
	}

	byName := map[string]CheckResult{}
	for _, c := range result.Checks {
		byName[c.Name] = c
	}
	if byName["Target OtherASA"].Status != CheckOK {
		t.Errorf("OtherASA: %+v", byName["Target OtherASA"])
	}
	if byName["Target VaultASA"].Status != CheckWarning {
		t.Errorf("VaultASA: %+v", byName["Target VaultASA"])
	}
	if byName["Target BrokenASA"].Status != CheckError {
		t.Errorf("BrokenASA: %+v", byName["Target BrokenASA"])
	}
	if byName["Keyring"].Status != CheckOK {
		t.Errorf("Keyring: %+v", byName["Keyring"])
	}
}

func TestDoctorKeyringUnavailable(t *testing.T) {
	env := newTestEnv(t, testProfiles)
	env.keyring.SetFailing(true)

	out, _, _ := env.run("doctor", "-o", "json")

	var result DoctorOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	for _, c := range result.Checks {
		if c.Name == "Keyring" && c.Status != CheckError {
			t.Errorf("keyring used by VaultASA should be an error: %+v", c)
		}
	}
}

func TestDoctorKnownHosts(t *testing.T) {
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(knownHosts, nil, 0600); err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, "[EdgeASA]\naddress = 192.0.2.10\nport = 22\npassword = x\nblacklist = edge\nssh_known_hosts = "+knownHosts+"\n")

	out, _, err := env.run("doctor", "--verbose")
	if err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[!!] Host key EdgeASA") {
		t.Errorf("unknown host should be a warning:\n%s", out)
	}
	if !strings.Contains(out, "ssh-keyscan -p 22 192.0.2.10") {
		t.Errorf("missing fix hint:\n%s", out)
	}
	if !strings.Contains(out, "All critical checks passed with some warnings.") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestDoctorMissingStore(t *testing.T) {
	env := newTestEnv(t, "")

	out, _, err := env.run("doctor", "--verbose")
	if err == nil {
		t.Fatal("doctor should fail without a profile store")
	}
	if !strings.Contains(out, "shunctl config init") {
		t.Errorf("missing fix hint:\n%s", out)
	}
}
