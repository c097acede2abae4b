// Package integration provides CLI integration tests for facet.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// facetBin is the path to the built facet binary.
	facetBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetFacetBin sets the path to the facet binary (called from TestMain).
func SetFacetBin(path string) {
	facetBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own work directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build facet: %v", buildErr)
	}
	if facetBin == "" {
		t.Fatal("facet binary not built (facetBin is empty)")
	}

	return &TestEnv{
		t:       t,
		TempDir: t.TempDir(),
	}
}

// WriteFile writes content to a file under the environment's temp
// directory and returns its full path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile reads a file back from the environment's temp directory.
func (e *TestEnv) ReadFile(path string) string {
	e.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// CmdResult holds the result of a facet command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunFacet executes the facet CLI with the given arguments, feeding
// stdin to the process. Returns stdout, stderr, and exit code.
func (e *TestEnv) RunFacet(stdin string, args ...string) CmdResult {
	e.t.Helper()

	cmd := exec.Command(facetBin, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run facet: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunFacet executes the facet CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunFacet(stdin string, args ...string) CmdResult {
	e.t.Helper()
	result := e.RunFacet(stdin, args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("facet %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}
