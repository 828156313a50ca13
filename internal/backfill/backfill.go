// Package backfill imports plans from historical transcript files.
package backfill

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cctrack/cctrack/internal/store"
	"github.com/cctrack/cctrack/internal/transcript"
)

// FromDir walks projectsDir for transcript files, extracts plan proposals,
// and inserts the ones not already recorded. Returns user-facing summary
// output.
func FromDir(projectsDir string, st *store.Store) (string, error) {
	if _, err := os.Stat(projectsDir); os.IsNotExist(err) {
		return fmt.Sprintf("No projects directory found at %s\nNothing to backfill.\n", projectsDir), nil
	}

	transcripts, err := findTranscripts(projectsDir)
	if err != nil {
		return "", err
	}

	existing, err := st.AllPlanIDs()
	if err != nil {
		return "", err
	}

	var found, imported, skipped int64
	for _, path := range transcripts {
		sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
		for _, plan := range transcript.ExtractPlans(path, sessionID) {
			found++
			if existing[plan.ToolUseID] {
				skipped++
				continue
			}
			if err := st.InsertPlan(plan.SessionID, plan.ToolUseID, plan.Timestamp, plan.PlanText); err != nil {
				return "", err
			}
			existing[plan.ToolUseID] = true
			imported++
		}
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Scanned %d transcript files.\n", len(transcripts))
	fmt.Fprintf(&out, "Found %d plans, imported %d new, skipped %d already recorded.\n",
		found, imported, skipped)
	return out.String(), nil
}

func findTranscripts(projectsDir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(projectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".jsonl") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk projects dir: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
