// Package testutils holds fixtures shared by the typetour test suites.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/config"
)

// SampleContent is a small, lint-clean content file in the Go language.
const SampleContent = `language: go
pages:
  - title: Hello
    code: |
      package main

      func main() {}
  - title: Variables
    markdown: "Use **var** or :="
    code: var x = 1
`

// DefaultPages are used by CreateTestCatalog when no pages are given.
var DefaultPages = []catalog.Page{
	{Title: "Basic Types", Code: "let a: number = 1;"},
	{Title: "Interfaces", Code: "interface A {}"},
	{Title: "Generics", Code: "function id<T>(x: T): T { return x; }"},
}

// CreateTestConfig returns the default configuration, isolated from the
// global viper instance and the environment of the test process.
func CreateTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	return cfg
}

// CreateTestCatalog builds a typescript catalog over pages, or over
// DefaultPages when none are given.
func CreateTestCatalog(t *testing.T, pages ...catalog.Page) *catalog.Catalog {
	t.Helper()
	if len(pages) == 0 {
		pages = DefaultPages
	}
	c, err := catalog.New("typescript", pages)
	require.NoError(t, err)
	return c
}

// CreateContentFile writes content to tour.yml in a fresh temp dir.
func CreateContentFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tour.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}
