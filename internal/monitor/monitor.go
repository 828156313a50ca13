package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cctrack/cctrack/internal/pricing"
	"github.com/cctrack/cctrack/internal/store"
)

// Monitor shows live tracking totals from the database, refreshing on an
// interval while Claude Code hooks keep writing to it.
type Monitor struct {
	options Options
	pricing *pricing.Service
}

type Options struct {
	DBPath     string
	Interval   time.Duration
	NoColor    bool
	Continuous bool
}

type sessionActivity struct {
	sessionID string
	model     string
	startTime string
	tokens    int64
	cost      float64
}

type snapshot struct {
	sessions       int64
	prompts        int64
	toolUses       int64
	totalTokens    int64
	totalCost      float64
	recentSessions []sessionActivity
}

type model struct {
	options    Options
	pricing    *pricing.Service
	lastUpdate time.Time
	snap       snapshot
	err        error
}

type tickMsg time.Time

type updateDataMsg struct {
	snap snapshot
	err  error
}

func New(opts Options) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = 5 * time.Second
	}

	return &Monitor{
		options: opts,
		pricing: pricing.NewService(),
	}
}

func (m *Monitor) Start(ctx context.Context) error {
	if m.options.Continuous {
		return m.startTUI(ctx)
	}
	return m.runOnce(ctx)
}

func (m *Monitor) startTUI(ctx context.Context) error {
	p := tea.NewProgram(
		initialModel(m.options, m.pricing),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}

func (m *Monitor) runOnce(ctx context.Context) error {
	snap, err := loadSnapshot(ctx, m.options.DBPath, m.pricing)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	fmt.Printf("Sessions: %d\n", snap.sessions)
	fmt.Printf("Prompts: %d\n", snap.prompts)
	fmt.Printf("Tool Uses: %d\n", snap.toolUses)
	fmt.Printf("Total Tokens: %d\n", snap.totalTokens)
	fmt.Printf("Est. Cost: $%.4f\n", snap.totalCost)

	return nil
}

func initialModel(opts Options, svc *pricing.Service) model {
	return model{
		options:    opts,
		pricing:    svc,
		lastUpdate: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.options.Interval),
		m.updateData(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.updateData()
		}

	case tickMsg:
		m.lastUpdate = time.Time(msg)
		return m, tea.Batch(
			tickCmd(m.options.Interval),
			m.updateData(),
		)

	case updateDataMsg:
		m.snap = msg.snap
		m.err = msg.err
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit, 'r' to retry", m.err)
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	if m.options.NoColor {
		headerStyle = lipgloss.NewStyle()
	}

	content := headerStyle.Render("Claude Code Tracking Monitor")
	content += "\n\n"

	summaryStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1).
		MarginBottom(1)

	if m.options.NoColor {
		summaryStyle = lipgloss.NewStyle()
	}

	summary := fmt.Sprintf(
		"Sessions: %d\nPrompts: %d\nTool Uses: %d\nTotal Tokens: %d\nEst. Cost: $%.4f\nLast Update: %s",
		m.snap.sessions,
		m.snap.prompts,
		m.snap.toolUses,
		m.snap.totalTokens,
		m.snap.totalCost,
		m.lastUpdate.Format("15:04:05"),
	)

	content += summaryStyle.Render(summary)
	content += "\n\n"

	if len(m.snap.recentSessions) > 0 {
		content += "Recent Sessions:\n"
		for i, s := range m.snap.recentSessions {
			if i >= 5 {
				break
			}
			content += fmt.Sprintf(
				"%s  %s  %d tokens  $%.4f\n",
				s.startTime,
				shortID(s.sessionID),
				s.tokens,
				s.cost,
			)
		}
	}

	content += "\n\nPress 'q' to quit, 'r' to refresh"
	return content
}

func (m model) updateData() tea.Cmd {
	return func() tea.Msg {
		snap, err := loadSnapshot(context.Background(), m.options.DBPath, m.pricing)
		if err != nil {
			return updateDataMsg{err: err}
		}
		return updateDataMsg{snap: snap}
	}
}

func loadSnapshot(ctx context.Context, dbPath string, svc *pricing.Service) (snapshot, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return snapshot{}, err
	}
	defer st.Close()

	db := st.DB()
	var snap snapshot
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&snap.sessions); err != nil {
		return snapshot{}, fmt.Errorf("count sessions: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM prompts`).Scan(&snap.prompts); err != nil {
		return snapshot{}, fmt.Errorf("count prompts: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM tool_uses`).Scan(&snap.toolUses); err != nil {
		return snapshot{}, fmt.Errorf("count tool uses: %w", err)
	}

	rows, err := db.Query(`
		SELECT t.session_id, t.model, COALESCE(s.started_at, ''),
		       t.input_tokens, t.output_tokens,
		       t.cache_creation_tokens, t.cache_read_tokens
		FROM token_usage t
		LEFT JOIN sessions s ON s.session_id = t.session_id
		ORDER BY s.started_at DESC`)
	if err != nil {
		return snapshot{}, fmt.Errorf("query token usage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a sessionActivity
		var model sql.NullString
		var in, out, cc, cr int64
		if err := rows.Scan(&a.sessionID, &model, &a.startTime, &in, &out, &cc, &cr); err != nil {
			return snapshot{}, fmt.Errorf("scan usage row: %w", err)
		}
		a.model = model.String
		a.tokens = in + out
		if svc != nil {
			a.cost = svc.EstimateCost(ctx, a.model, in, cc, cr, out)
		} else {
			a.cost = pricing.EstimateCost(a.model, in, cc, cr, out)
		}
		snap.totalTokens += a.tokens
		snap.totalCost += a.cost
		if len(snap.recentSessions) < 10 {
			snap.recentSessions = append(snap.recentSessions, a)
		}
	}
	if err := rows.Err(); err != nil {
		return snapshot{}, err
	}

	return snap, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
