package stats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// formatNumber formats an integer with thousand separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return strconv.FormatInt(n, 10)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}

// formatDuration renders seconds as 30s / 12m / 1h 30m.
func formatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// humanSize renders a byte count as B/KB/MB/GB.
func humanSize(bytes int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	}
	return fmt.Sprintf("%d B", bytes)
}

func formatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// makeBar builds a proportional block-character bar, at least one block
// wide for any non-zero count.
func makeBar(count, maxCount int64, maxWidth int) string {
	if maxCount == 0 {
		return ""
	}
	width := int(float64(count)/float64(maxCount)*float64(maxWidth) + 0.5)
	if count > 0 && width < 1 {
		width = 1
	}
	return strings.Repeat("█", width)
}

// shortenPath replaces the home prefix with ~ and, when still longer than
// maxLen, keeps the first and last two components around an ellipsis.
func shortenPath(path, home string, maxLen int) string {
	p := path
	if home != "" && strings.HasPrefix(p, home) {
		p = "~" + p[len(home):]
	}
	if len(p) <= maxLen {
		return p
	}
	parts := splitNonEmpty(p, "/")
	if len(parts) <= 3 {
		return p
	}
	prefix := ""
	if strings.HasPrefix(p, "/") {
		prefix = "/"
	}
	shortened := fmt.Sprintf("%s%s/.../%s/%s", prefix, parts[0], parts[len(parts)-2], parts[len(parts)-1])
	if len(shortened) < len(p) {
		return shortened
	}
	return p
}

func splitNonEmpty(s, sep string) []string {
	var parts []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

var claudeModelRe = regexp.MustCompile(`^claude-(opus|sonnet|haiku)-(\d+)(?:-(\d+))?-\d{8}$`)

// ShortenModelName reduces a full model identifier to a display name, e.g.
// claude-sonnet-4-5-20250929 -> Sonnet-4.5. Non-Claude models are truncated
// to 12 characters on a dash boundary when possible.
func ShortenModelName(model string) string {
	if m := claudeModelRe.FindStringSubmatch(model); m != nil {
		family := strings.ToUpper(m[1][:1]) + m[1][1:]
		if m[3] != "" {
			return fmt.Sprintf("%s-%s.%s", family, m[2], m[3])
		}
		return fmt.Sprintf("%s-%s", family, m[2])
	}
	if len(model) <= 12 {
		return model
	}
	if idx := strings.LastIndex(model[:13], "-"); idx > 0 {
		return model[:idx]
	}
	return model[:12]
}

// firstWord extracts the leading word of a shell command when it looks like
// a plain program name (letters, digits, and _ . / - only).
func firstWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	word := fields[0]
	for _, c := range word {
		if !isProgramChar(c) {
			return ""
		}
	}
	return word
}

func isProgramChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '/' || c == '-':
		return true
	}
	return false
}

// extractProjectInfo splits a working directory into a repository root and
// an optional worktree name. Paths under <root>/.claude/worktrees/<name>
// are attributed to <root>; anything after the worktree name is discarded.
func extractProjectInfo(path string) (string, string) {
	const marker = "/.claude/worktrees/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return path, ""
	}
	root := path[:idx]
	after := path[idx+len(marker):]
	name := after
	if slash := strings.Index(after, "/"); slash >= 0 {
		name = after[:slash]
	}
	return root, name
}
