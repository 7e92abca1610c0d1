//go:build integration

// Package integration runs the shunctl binary end to end.
package integration

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestEnv is an isolated configuration directory, profile store and
// file-based keyring for one test.
type TestEnv struct {
	t          *testing.T
	BinaryPath string
	ConfigDir  string
	KeyringDir string
}

// NewTestEnv creates an environment whose profile store holds profiles.
func NewTestEnv(t *testing.T, profiles string) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &TestEnv{
		t:          t,
		BinaryPath: ShunctlBinaryPath(t),
		ConfigDir:  filepath.Join(tmpDir, "config"),
		KeyringDir: filepath.Join(tmpDir, "keyring"),
	}
	for _, dir := range []string{env.ConfigDir, env.KeyringDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	if profiles != "" {
		if err := os.WriteFile(env.ProfilesPath(), []byte(profiles), 0600); err != nil {
			t.Fatalf("failed to write profiles: %v", err)
		}
	}
	return env
}

// ProfilesPath returns the profile store path.
func (e *TestEnv) ProfilesPath() string {
	return filepath.Join(e.ConfigDir, "profiles.conf")
}

// Result is the outcome of one shunctl invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run runs shunctl with args and no input.
func (e *TestEnv) Run(args ...string) Result {
	e.t.Helper()
	return e.RunWithInput("", args...)
}

// RunWithInput runs shunctl with args, feeding input on stdin.
func (e *TestEnv) RunWithInput(input string, args ...string) Result {
	e.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+filepath.Dir(e.ConfigDir),
		"SHUNCTL_CONFIG_DIR="+e.ConfigDir,
		"SHUNCTL_TEST_KEYRING_DIR="+e.KeyringDir, // file-based keyring
		"SHUNCTL_PROFILES=",
		"SHUNCTL_TARGET=",
	)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{}
	err := cmd.Run()
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		e.t.Fatalf("failed to run shunctl: %v", err)
	}
	return res
}

// ShunctlBinaryPath returns the path to the shunctl binary.
func ShunctlBinaryPath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("SHUNCTL_BINARY"); path != "" {
		return path
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "shunctl")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("shunctl binary not found at %s - run 'go build -o bin/shunctl ./cmd/shunctl' first", binaryPath)
	}
	return binaryPath
}
