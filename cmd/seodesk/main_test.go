package main

import (
	"testing"

	"github.com/seodesk/seodesk/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand verifies the command tree
func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{
		{"news", "sync"},
		{"news", "list"},
		{"seo", "analyze"},
		{"diag"},
		{"translit"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	sync, _, err := root.Find([]string{"news", "sync"})
	require.NoError(t, err)
	assert.NotNil(t, sync.Flags().Lookup("cleanup"))
	assert.NotNil(t, sync.Flags().Lookup("days"))
}

// TestCheckFormat verifies accepted output formats
func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("table"))
	assert.NoError(t, checkFormat("json"))
	assert.Error(t, checkFormat("xml"))
}

// TestTruncate verifies rune-aware shortening
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Прив...", truncate("Привет, мир", 7))
}

// TestWrapText verifies line breaking at word boundaries
func TestWrapText(t *testing.T) {
	assert.Equal(t, "один два\nтри", wrapText("один два три", 9))
	assert.Equal(t, "", wrapText("", 10))
}

// TestWithError verifies failed probes collapse to status and error
func TestWithError(t *testing.T) {
	rows := [][2]any{{"Domain", "example.com"}}
	assert.Equal(t, rows, withError(diagnostics.StatusSuccess, "", rows))
	assert.Equal(t,
		[][2]any{{"Status", "timeout"}, {"Error", "ping timeout"}},
		withError(diagnostics.StatusTimeout, "ping timeout", rows))
}
