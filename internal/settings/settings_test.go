package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchSettingsAddsHook(t *testing.T) {
	s := map[string]interface{}{}

	added := PatchSettings(s, "PostToolUse", "/bin/cctrack hook")
	assert.True(t, added)

	hooks := s["hooks"].(map[string]interface{})
	entries := hooks["PostToolUse"].([]interface{})
	require.Len(t, entries, 1)
	assert.True(t, entryHasCommand(entries[0], "/bin/cctrack hook"))
}

func TestPatchSettingsAlreadyInstalled(t *testing.T) {
	s := map[string]interface{}{}
	require.True(t, PatchSettings(s, "Stop", "/bin/cctrack hook"))
	assert.False(t, PatchSettings(s, "Stop", "/bin/cctrack hook"))

	hooks := s["hooks"].(map[string]interface{})
	assert.Len(t, hooks["Stop"].([]interface{}), 1)
}

func TestUnpatchSettingsRemovesMatchingHook(t *testing.T) {
	s := map[string]interface{}{}
	PatchSettings(s, "PostToolUse", "/bin/cctrack hook")

	modified := UnpatchSettings(s, "PostToolUse", "/bin/cctrack hook")
	assert.True(t, modified)
	assert.NotContains(t, s, "hooks", "empty hooks object is pruned")
}

func TestUnpatchSettingsLeavesOtherHooks(t *testing.T) {
	s := map[string]interface{}{}
	PatchSettings(s, "PostToolUse", "/bin/cctrack hook")
	PatchSettings(s, "PostToolUse", "other-tool")

	modified := UnpatchSettings(s, "PostToolUse", "/bin/cctrack hook")
	assert.True(t, modified)

	hooks := s["hooks"].(map[string]interface{})
	entries := hooks["PostToolUse"].([]interface{})
	require.Len(t, entries, 1)
	assert.True(t, entryHasCommand(entries[0], "other-tool"))
}

func TestUnpatchSettingsNoMatch(t *testing.T) {
	s := map[string]interface{}{}
	PatchSettings(s, "PostToolUse", "other-tool")

	assert.False(t, UnpatchSettings(s, "PostToolUse", "/bin/cctrack hook"))
	assert.Contains(t, s, "hooks")
}

func TestUnpatchSettingsNoHooksKey(t *testing.T) {
	s := map[string]interface{}{"other": "value"}
	assert.False(t, UnpatchSettings(s, "PostToolUse", "cmd hook"))
	assert.Equal(t, "value", s["other"])
}

func TestUnpatchSettingsKeepsSiblingEvents(t *testing.T) {
	s := map[string]interface{}{}
	PatchSettings(s, "PostToolUse", "cmd hook")
	PatchSettings(s, "PreToolUse", "other-tool")

	UnpatchSettings(s, "PostToolUse", "cmd hook")

	hooks := s["hooks"].(map[string]interface{})
	assert.NotContains(t, hooks, "PostToolUse")
	assert.Contains(t, hooks, "PreToolUse")
}

func TestInstallRegistersAllEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	added, err := Install(path, "/bin/cctrack hook")
	require.NoError(t, err)
	assert.Equal(t, len(HookEvents), added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &s))
	hooks := s["hooks"].(map[string]interface{})
	for _, event := range HookEvents {
		assert.Contains(t, hooks, event)
	}

	// Second install is a no-op that leaves the file intact.
	added, err = Install(path, "/bin/cctrack hook")
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestInstallPreservesExistingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"opus","hooks":{"PreToolUse":[{"matcher":".*","hooks":[{"type":"command","command":"other"}]}]}}`), 0o644))

	_, err := Install(path, "/bin/cctrack hook")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, "opus", s["model"])
	hooks := s["hooks"].(map[string]interface{})
	entries := hooks["PreToolUse"].([]interface{})
	assert.Len(t, entries, 2, "existing entry kept alongside the new one")
}

func TestUninstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	_, err := Install(path, "/bin/cctrack hook")
	require.NoError(t, err)

	removed, err := Uninstall(path, "/bin/cctrack hook")
	require.NoError(t, err)
	assert.Equal(t, len(HookEvents), removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &s))
	assert.NotContains(t, s, "hooks")
}

func TestUninstallMissingFile(t *testing.T) {
	removed, err := Uninstall(filepath.Join(t.TempDir(), "settings.json"), "cmd hook")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestConfirm(t *testing.T) {
	var out strings.Builder
	assert.True(t, Confirm("Delete?", strings.NewReader("y\n"), &out))
	assert.Contains(t, out.String(), "Delete? [y/N]")

	assert.True(t, Confirm("Delete?", strings.NewReader("Y\n"), &out))
	assert.False(t, Confirm("Delete?", strings.NewReader("n\n"), &out))
	assert.False(t, Confirm("Delete?", strings.NewReader("\n"), &out))
	assert.False(t, Confirm("Delete?", strings.NewReader(""), &out))
}
