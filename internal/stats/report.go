package stats

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/cctrack/cctrack/internal/pricing"
)

const barWidth = 20

// Reporter renders the aggregate usage report from the tracking database.
type Reporter struct {
	db      *sql.DB
	noColor bool
	home    string
	pricing *pricing.Service
}

// NewReporter builds a Reporter. svc may be nil, in which case cost
// estimates come from the embedded rate table without a network fetch.
func NewReporter(db *sql.DB, noColor bool, svc *pricing.Service) *Reporter {
	home, _ := os.UserHomeDir()
	return &Reporter{db: db, noColor: noColor, home: home, pricing: svc}
}

// Render writes the full report. dbPath and dbSize describe the database
// file for the header section; dbSize < 0 omits the size line.
func (r *Reporter) Render(ctx context.Context, dbPath string, dbSize int64) (string, error) {
	var out strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	if r.noColor {
		titleStyle = lipgloss.NewStyle()
	}
	out.WriteString(titleStyle.Render("Claude Code Usage Report"))
	out.WriteString("\n\n")

	out.WriteString(fmt.Sprintf("Database: %s", shortenPath(dbPath, r.home, 60)))
	if dbSize >= 0 {
		out.WriteString(fmt.Sprintf(" (%s)", humanSize(dbSize)))
	}
	out.WriteString("\n")
	if since := r.trackingSince(); since != "" {
		out.WriteString(fmt.Sprintf("Tracking since: %s\n", since))
	}
	out.WriteString("\n")

	sections := []func(*strings.Builder) error{
		r.sessionsSection,
		r.modelsSection,
		func(out *strings.Builder) error { return r.tokensSection(ctx, out) },
		r.promptsSection,
		r.plansSection,
		r.toolsSection,
		r.topFilesSection,
		r.topCommandsSection,
		r.activitySection,
		r.projectsSection,
	}
	for _, section := range sections {
		if err := section(&out); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

func (r *Reporter) header(title string) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	if r.noColor {
		style = lipgloss.NewStyle()
	}
	return style.Render("── "+title+" ──") + "\n"
}

func (r *Reporter) trackingSince() string {
	var since sql.NullString
	err := r.db.QueryRow(`SELECT MIN(started_at) FROM sessions`).Scan(&since)
	if err != nil || !since.Valid {
		return ""
	}
	return since.String
}

func (r *Reporter) sessionsSection(out *strings.Builder) error {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}

	var totalSecs sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM((julianday(ended_at) - julianday(started_at)) * 86400)
		FROM sessions WHERE started_at IS NOT NULL AND ended_at IS NOT NULL`).Scan(&totalSecs)
	if err != nil {
		return fmt.Errorf("sum session durations: %w", err)
	}

	var ended int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE started_at IS NOT NULL AND ended_at IS NOT NULL`).Scan(&ended); err != nil {
		return fmt.Errorf("count ended sessions: %w", err)
	}

	var today int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE date(started_at) = date('now')`).Scan(&today); err != nil {
		return fmt.Errorf("count sessions today: %w", err)
	}

	out.WriteString(r.header("Sessions"))
	out.WriteString(fmt.Sprintf("  Total sessions:  %s\n", formatNumber(count)))
	if totalSecs.Valid && ended > 0 {
		total := int64(totalSecs.Float64)
		out.WriteString(fmt.Sprintf("  Total time:      %s\n", formatDuration(total)))
		out.WriteString(fmt.Sprintf("  Avg session:     %s\n", formatDuration(total/ended)))
	}
	out.WriteString(fmt.Sprintf("  Sessions today:  %s\n\n", formatNumber(today)))
	return nil
}

func (r *Reporter) modelsSection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT model, COUNT(*) AS sessions, SUM(api_call_count) AS calls
		FROM token_usage
		GROUP BY model
		ORDER BY calls DESC`)
	if err != nil {
		return fmt.Errorf("query models: %w", err)
	}
	defer rows.Close()

	type modelRow struct {
		model    string
		sessions int64
		calls    int64
	}
	var models []modelRow
	var maxCalls int64
	for rows.Next() {
		var m modelRow
		if err := rows.Scan(&m.model, &m.sessions, &m.calls); err != nil {
			return fmt.Errorf("scan model row: %w", err)
		}
		if m.calls > maxCalls {
			maxCalls = m.calls
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(models) == 0 {
		return nil
	}

	out.WriteString(r.header("Models"))
	table := r.newTable(out)
	table.Header([]string{"Model", "Sessions", "API Calls", ""})
	for _, m := range models {
		table.Append([]string{
			ShortenModelName(m.model),
			formatNumber(m.sessions),
			formatNumber(m.calls),
			makeBar(m.calls, maxCalls, barWidth),
		})
	}
	table.Render()
	out.WriteString("\n")
	return nil
}

func (r *Reporter) estimateCost(ctx context.Context, model string, input, cacheCreate, cacheRead, output int64) float64 {
	if r.pricing != nil {
		return r.pricing.EstimateCost(ctx, model, input, cacheCreate, cacheRead, output)
	}
	return pricing.EstimateCost(model, input, cacheCreate, cacheRead, output)
}

func (r *Reporter) tokensSection(ctx context.Context, out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT model,
		       SUM(input_tokens), SUM(output_tokens),
		       SUM(cache_creation_tokens), SUM(cache_read_tokens)
		FROM token_usage
		GROUP BY model
		ORDER BY SUM(input_tokens) + SUM(output_tokens) DESC`)
	if err != nil {
		return fmt.Errorf("query token usage: %w", err)
	}
	defer rows.Close()

	type usageRow struct {
		model                  string
		input, output          int64
		cacheCreate, cacheRead int64
	}
	var usage []usageRow
	var totalIn, totalOut, totalCC, totalCR int64
	for rows.Next() {
		var u usageRow
		if err := rows.Scan(&u.model, &u.input, &u.output, &u.cacheCreate, &u.cacheRead); err != nil {
			return fmt.Errorf("scan token row: %w", err)
		}
		totalIn += u.input
		totalOut += u.output
		totalCC += u.cacheCreate
		totalCR += u.cacheRead
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(usage) == 0 {
		return nil
	}

	out.WriteString(r.header("Token Usage"))
	out.WriteString(fmt.Sprintf("  Input tokens:          %s\n", formatNumber(totalIn)))
	out.WriteString(fmt.Sprintf("  Output tokens:         %s\n", formatNumber(totalOut)))
	out.WriteString(fmt.Sprintf("  Cache creation tokens: %s\n", formatNumber(totalCC)))
	out.WriteString(fmt.Sprintf("  Cache read tokens:     %s\n", formatNumber(totalCR)))
	if totalIn+totalCR > 0 {
		rate := float64(totalCR) / float64(totalIn+totalCR) * 100
		out.WriteString(fmt.Sprintf("  Cache hit rate:        %.1f%%\n", rate))
	}

	var totalCost float64
	table := r.newTable(out)
	table.Header([]string{"Model", "Input", "Output", "Est. Cost"})
	for _, u := range usage {
		cost := r.estimateCost(ctx, u.model, u.input, u.cacheCreate, u.cacheRead, u.output)
		totalCost += cost
		table.Append([]string{
			ShortenModelName(u.model),
			formatNumber(u.input),
			formatNumber(u.output),
			formatCost(cost),
		})
	}
	out.WriteString("\n")
	table.Render()
	out.WriteString(fmt.Sprintf("  Total estimated cost:  %s\n\n", formatCost(totalCost)))
	return nil
}

func (r *Reporter) promptsSection(out *strings.Builder) error {
	var count int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM prompts`).Scan(&count); err != nil {
		return fmt.Errorf("count prompts: %w", err)
	}
	if count == 0 {
		return nil
	}
	var avgLen sql.NullFloat64
	if err := r.db.QueryRow(`SELECT AVG(LENGTH(prompt_text)) FROM prompts`).Scan(&avgLen); err != nil {
		return fmt.Errorf("avg prompt length: %w", err)
	}

	out.WriteString(r.header("Prompts"))
	out.WriteString(fmt.Sprintf("  Total prompts:   %s\n", formatNumber(count)))
	if avgLen.Valid {
		out.WriteString(fmt.Sprintf("  Avg length:      %.0f chars\n", avgLen.Float64))
	}
	out.WriteString("\n")
	return nil
}

func (r *Reporter) plansSection(out *strings.Builder) error {
	var total, accepted, rejected, pending int64
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN accepted = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN accepted = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN accepted IS NULL THEN 1 ELSE 0 END), 0)
		FROM plans`).Scan(&total, &accepted, &rejected, &pending)
	if err != nil {
		return fmt.Errorf("count plans: %w", err)
	}
	if total == 0 {
		return nil
	}

	out.WriteString(r.header("Plans"))
	out.WriteString(fmt.Sprintf("  Total plans:     %s\n", formatNumber(total)))
	out.WriteString(fmt.Sprintf("  Accepted:        %s\n", formatNumber(accepted)))
	out.WriteString(fmt.Sprintf("  Rejected:        %s\n", formatNumber(rejected)))
	if pending > 0 {
		out.WriteString(fmt.Sprintf("  Pending:         %s\n", formatNumber(pending)))
	}
	if accepted+rejected > 0 {
		rate := float64(accepted) / float64(accepted+rejected) * 100
		out.WriteString(fmt.Sprintf("  Acceptance rate: %.0f%%\n", rate))
	}
	out.WriteString("\n")
	return nil
}

func (r *Reporter) toolsSection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT tool_name, COUNT(*) AS uses
		FROM tool_uses
		GROUP BY tool_name
		ORDER BY uses DESC`)
	if err != nil {
		return fmt.Errorf("query tool uses: %w", err)
	}
	defer rows.Close()

	type toolRow struct {
		name string
		uses int64
	}
	var tools []toolRow
	var maxUses int64
	for rows.Next() {
		var t toolRow
		if err := rows.Scan(&t.name, &t.uses); err != nil {
			return fmt.Errorf("scan tool row: %w", err)
		}
		if t.uses > maxUses {
			maxUses = t.uses
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(tools) == 0 {
		return nil
	}

	out.WriteString(r.header("Tool Usage"))
	table := r.newTable(out)
	table.Header([]string{"Tool", "Uses", ""})
	for _, t := range tools {
		table.Append([]string{t.name, formatNumber(t.uses), makeBar(t.uses, maxUses, barWidth)})
	}
	table.Render()
	out.WriteString("\n")
	return nil
}

func (r *Reporter) topFilesSection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT json_extract(input, '$.file_path') AS path, COUNT(*) AS reads
		FROM tool_uses
		WHERE tool_name = 'Read' AND json_extract(input, '$.file_path') IS NOT NULL
		GROUP BY path
		ORDER BY reads DESC
		LIMIT 10`)
	if err != nil {
		return fmt.Errorf("query top files: %w", err)
	}
	defer rows.Close()

	wrote := false
	table := r.newTable(out)
	table.Header([]string{"File", "Reads"})
	for rows.Next() {
		var path string
		var reads int64
		if err := rows.Scan(&path, &reads); err != nil {
			return fmt.Errorf("scan file row: %w", err)
		}
		if !wrote {
			out.WriteString(r.header("Top Files Read"))
			wrote = true
		}
		table.Append([]string{shortenPath(path, r.home, 50), formatNumber(reads)})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if wrote {
		table.Render()
		out.WriteString("\n")
	}
	return nil
}

func (r *Reporter) topCommandsSection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT json_extract(input, '$.command') AS command
		FROM tool_uses
		WHERE tool_name = 'Bash' AND json_extract(input, '$.command') IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("query bash commands: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var command string
		if err := rows.Scan(&command); err != nil {
			return fmt.Errorf("scan command row: %w", err)
		}
		if word := firstWord(command); word != "" {
			counts[word]++
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}

	type cmdRow struct {
		name  string
		count int64
	}
	cmds := make([]cmdRow, 0, len(counts))
	for name, count := range counts {
		cmds = append(cmds, cmdRow{name, count})
	}
	sort.Slice(cmds, func(i, j int) bool {
		if cmds[i].count != cmds[j].count {
			return cmds[i].count > cmds[j].count
		}
		return cmds[i].name < cmds[j].name
	})
	if len(cmds) > 10 {
		cmds = cmds[:10]
	}

	out.WriteString(r.header("Top Bash Commands"))
	table := r.newTable(out)
	table.Header([]string{"Command", "Runs"})
	for _, c := range cmds {
		table.Append([]string{c.name, formatNumber(c.count)})
	}
	table.Render()
	out.WriteString("\n")
	return nil
}

func (r *Reporter) activitySection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT date(started_at) AS day, COUNT(*) AS sessions
		FROM sessions
		WHERE started_at IS NOT NULL
		GROUP BY day
		ORDER BY day DESC
		LIMIT 14`)
	if err != nil {
		return fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	type dayRow struct {
		day      string
		sessions int64
	}
	var days []dayRow
	var maxSessions int64
	for rows.Next() {
		var d dayRow
		if err := rows.Scan(&d.day, &d.sessions); err != nil {
			return fmt.Errorf("scan activity row: %w", err)
		}
		if d.sessions > maxSessions {
			maxSessions = d.sessions
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(days) == 0 {
		return nil
	}

	out.WriteString(r.header("Activity by Date"))
	table := r.newTable(out)
	table.Header([]string{"Date", "Sessions", ""})
	for _, d := range days {
		table.Append([]string{d.day, formatNumber(d.sessions), makeBar(d.sessions, maxSessions, barWidth)})
	}
	table.Render()
	out.WriteString("\n")
	return nil
}

func (r *Reporter) projectsSection(out *strings.Builder) error {
	rows, err := r.db.Query(`
		SELECT cwd, COUNT(*) AS sessions
		FROM sessions
		WHERE cwd IS NOT NULL AND cwd != ''
		GROUP BY cwd`)
	if err != nil {
		return fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	// Worktree sessions roll up under the repository they belong to.
	sessionCounts := make(map[string]int64)
	worktrees := make(map[string]map[string]bool)
	for rows.Next() {
		var cwd string
		var sessions int64
		if err := rows.Scan(&cwd, &sessions); err != nil {
			return fmt.Errorf("scan project row: %w", err)
		}
		root, worktree := extractProjectInfo(cwd)
		sessionCounts[root] += sessions
		if worktree != "" {
			if worktrees[root] == nil {
				worktrees[root] = make(map[string]bool)
			}
			worktrees[root][worktree] = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(sessionCounts) == 0 {
		return nil
	}

	type projRow struct {
		root     string
		sessions int64
	}
	projects := make([]projRow, 0, len(sessionCounts))
	for root, sessions := range sessionCounts {
		projects = append(projects, projRow{root, sessions})
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].sessions != projects[j].sessions {
			return projects[i].sessions > projects[j].sessions
		}
		return projects[i].root < projects[j].root
	})

	out.WriteString(r.header("By Project"))
	table := r.newTable(out)
	table.Header([]string{"Project", "Sessions", "Worktrees"})
	for _, p := range projects {
		wt := ""
		if n := len(worktrees[p.root]); n > 0 {
			wt = formatNumber(int64(n))
		}
		table.Append([]string{shortenPath(p.root, r.home, 50), formatNumber(p.sessions), wt})
	}
	table.Render()
	out.WriteString("\n")
	return nil
}

func (r *Reporter) newTable(out *strings.Builder) *tableBuffer {
	return &tableBuffer{out: out}
}

// tableBuffer accumulates rows and renders them into the report with the
// tablewriter v1.0.9 API.
type tableBuffer struct {
	out     *strings.Builder
	headers []string
	rows    [][]string
}

func (t *tableBuffer) Header(headers []string) {
	t.headers = headers
}

func (t *tableBuffer) Append(row []string) {
	t.rows = append(t.rows, row)
}

func (t *tableBuffer) Render() {
	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(t.headers)
	for _, row := range t.rows {
		table.Append(row)
	}
	table.Render()
	t.out.WriteString(buf.String())
}
