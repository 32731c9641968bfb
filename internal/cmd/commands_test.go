package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetmind/meetmind/internal/config"
	"github.com/meetmind/meetmind/internal/db"
)

// setupHome points the config and database at a temp dir and returns an open
// store on it.
func setupHome(t *testing.T) *db.Store {
	t.Helper()
	home := t.TempDir()
	t.Setenv("MEETMIND_HOME", home)
	t.Setenv("MEETMIND_DB_PATH", filepath.Join(home, "meetmind.sqlite"))
	configPath = ""

	store, err := db.Open(filepath.Join(home, "meetmind.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	store := setupHome(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved meetings.")

	require.NoError(t, store.SaveTranscript("100", db.SavedTranscript{Content: "x", Title: "Planning", Date: "d"}))
	require.NoError(t, store.SaveSummary(db.SummaryRecord{MeetingID: "100", Summary: map[string]string{"tasks": "t"}}))

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Planning")
	assert.Contains(t, out, "✓")
}

func TestShowCommand(t *testing.T) {
	store := setupHome(t)
	require.NoError(t, store.SaveTranscript("100", db.SavedTranscript{Content: "Ada (t)\nhello", Title: "Planning"}))

	out, err := run(t, "show", "current", "--summary=false")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	_, err = run(t, "show", "missing", "--summary=false")
	assert.Error(t, err)

	_, err = run(t, "show", "100", "--summary")
	assert.ErrorContains(t, err, "no summary")
}

func TestPrefsCommand(t *testing.T) {
	setupHome(t)

	out, err := run(t, "prefs")
	require.NoError(t, err)
	assert.Contains(t, out, "operationMode:   auto")

	out, err = run(t, "prefs", "--mode", "manual", "--lang", "de")
	require.NoError(t, err)
	assert.Contains(t, out, "operationMode:   manual")
	assert.Contains(t, out, "summaryLanguage: de")

	_, err = run(t, "prefs", "--mode", "sometimes")
	assert.Error(t, err)
}

func TestFaultsCommand(t *testing.T) {
	store := setupHome(t)

	out, err := run(t, "faults")
	require.NoError(t, err)
	assert.Contains(t, out, "No faults recorded.")

	require.NoError(t, store.AppendFault(db.FaultEntry{ID: "1", Source: "005", Message: "caption slot missing speaker or text"}))
	out, err = run(t, "faults")
	require.NoError(t, err)
	assert.Contains(t, out, "005")
}

func TestSummarizeWithoutKey(t *testing.T) {
	setupHome(t)
	t.Setenv("MEETMIND_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "summarize")
	assert.ErrorContains(t, err, "no API key")
}

func TestBridgeAccessGeneratesStableToken(t *testing.T) {
	setupHome(t)

	first, err := bridgeAccess(config.BridgeConfig{AllowedOrigins: []string{"chrome-extension://abc"}})
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	assert.Equal(t, []string{"chrome-extension://abc"}, first.AllowedOrigins)

	data, err := os.ReadFile(config.BridgeTokenPath())
	require.NoError(t, err)
	assert.Equal(t, first.Token, strings.TrimSpace(string(data)))

	second, err := bridgeAccess(config.BridgeConfig{})
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)

	configured, err := bridgeAccess(config.BridgeConfig{Token: "mine"})
	require.NoError(t, err)
	assert.Equal(t, "mine", configured.Token)
}
