// Package settings patches the Claude Code settings.json to register and
// unregister the tracking hook.
package settings

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cctrack/cctrack/internal/types"
)

// HookEvents are the settings.json hook keys the tracker registers under.
var HookEvents = []string{
	"SessionStart",
	"SessionEnd",
	"UserPromptSubmit",
	"Stop",
	"PreToolUse",
	"PostToolUse",
}

// ClaudeDir returns the ~/.claude directory.
func ClaudeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", types.ErrNoHomeDir
	}
	return filepath.Join(home, ".claude"), nil
}

// Path returns the settings.json path under ~/.claude.
func Path() (string, error) {
	dir, err := ClaudeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Install registers command under every hook event in the settings file,
// creating the file if needed. Events that already carry the command are
// left alone. Returns the number of events newly registered.
func Install(settingsPath, command string) (int, error) {
	settings, err := load(settingsPath)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, event := range HookEvents {
		if PatchSettings(settings, event, command) {
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}

	if err := save(settingsPath, settings); err != nil {
		return 0, err
	}
	return added, nil
}

// Uninstall removes every hook entry matching command. Returns the number
// of events it was removed from.
func Uninstall(settingsPath, command string) (int, error) {
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return 0, nil
	}
	settings, err := load(settingsPath)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, event := range HookEvents {
		if UnpatchSettings(settings, event, command) {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	if err := save(settingsPath, settings); err != nil {
		return 0, err
	}
	return removed, nil
}

// PatchSettings adds a hook entry for command under the given event key.
// Returns false when the command is already registered there.
func PatchSettings(settings map[string]interface{}, event, command string) bool {
	if hasCommand(settings, event, command) {
		return false
	}

	hooks, ok := settings["hooks"].(map[string]interface{})
	if !ok {
		hooks = make(map[string]interface{})
		settings["hooks"] = hooks
	}
	entries, _ := hooks[event].([]interface{})
	entries = append(entries, map[string]interface{}{
		"matcher": ".*",
		"hooks": []interface{}{
			map[string]interface{}{
				"type":    "command",
				"command": command,
			},
		},
	})
	hooks[event] = entries
	return true
}

// UnpatchSettings removes hook entries matching command from the given
// event key, pruning the event array and the hooks object when they end
// up empty. Returns true when an entry was removed.
func UnpatchSettings(settings map[string]interface{}, event, command string) bool {
	hooks, ok := settings["hooks"].(map[string]interface{})
	if !ok {
		return false
	}
	entries, ok := hooks[event].([]interface{})
	if !ok {
		return false
	}

	kept := entries[:0]
	for _, entry := range entries {
		if !entryHasCommand(entry, command) {
			kept = append(kept, entry)
		}
	}
	modified := len(kept) != len(entries)
	if len(kept) == 0 {
		delete(hooks, event)
	} else {
		hooks[event] = kept
	}
	if len(hooks) == 0 {
		delete(settings, "hooks")
	}
	return modified
}

func hasCommand(settings map[string]interface{}, event, command string) bool {
	hooks, ok := settings["hooks"].(map[string]interface{})
	if !ok {
		return false
	}
	entries, ok := hooks[event].([]interface{})
	if !ok {
		return false
	}
	for _, entry := range entries {
		if entryHasCommand(entry, command) {
			return true
		}
	}
	return false
}

func entryHasCommand(entry interface{}, command string) bool {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return false
	}
	inner, ok := m["hooks"].([]interface{})
	if !ok {
		return false
	}
	for _, h := range inner {
		hm, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		if cmd, ok := hm["command"].(string); ok && cmd == command {
			return true
		}
	}
	return false
}

func load(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]interface{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if settings == nil {
		settings = make(map[string]interface{})
	}
	return settings, nil
}

func save(path string, settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Confirm writes a [y/N] prompt and reads one line of input. Only a
// leading y or Y confirms.
func Confirm(prompt string, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
