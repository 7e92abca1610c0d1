package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "EdgeASA", "EdgeASA"},
		{"underscore and dash", "enable_password-2", "enable_password-2"},
		{"spaces", "Core ASA", "Core_ASA"},
		{"dots", "fw.example", "fw_example"},
		{"unicode", "pare-feu-é", "pare-feu-__"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeKey(tt.input); got != tt.want {
				t.Errorf("SanitizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeKeyPathTraversal(t *testing.T) {
	for _, input := range []string{"../etc/passwd", "a/b", `a\b`, ".."} {
		h := sha256.Sum256([]byte(input))
		want := hex.EncodeToString(h[:])
		if got := SanitizeKey(input); got != want {
			t.Errorf("SanitizeKey(%q) = %q, want hash %q", input, got, want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		s    string
		subs []string
		want bool
	}{
		{"D-Bus Secret Service unavailable", []string{"secret service"}, true},
		{"permission DENIED", []string{"denied", "locked"}, true},
		{"all good", []string{"error"}, false},
		{"anything", nil, false},
	}

	for _, tt := range tests {
		if got := ContainsAny(tt.s, tt.subs...); got != tt.want {
			t.Errorf("ContainsAny(%q, %v) = %v, want %v", tt.s, tt.subs, got, tt.want)
		}
	}
}
