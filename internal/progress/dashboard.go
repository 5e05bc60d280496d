package progress

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type stepMsg struct {
	alias       string
	phase       Phase
	done, total int
}

type finishedMsg struct {
	alias string
	err   error
}

type closeMsg struct{}

type row struct {
	phase       Phase
	done, total int
	err         error
}

// Model is the bubbletea model behind Dashboard.
type Model struct {
	title  string
	order  []string
	rows   map[string]*row
	closed bool
}

func NewModel(title string, aliases []string) Model {
	rows := make(map[string]*row, len(aliases))
	for _, a := range aliases {
		rows[a] = &row{phase: PhaseQueued}
	}
	order := make([]string, len(aliases))
	copy(order, aliases)
	return Model{title: title, order: order, rows: rows}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case stepMsg:
		r := m.row(msg.alias)
		r.phase, r.done, r.total = msg.phase, msg.done, msg.total
	case finishedMsg:
		r := m.row(msg.alias)
		r.err = msg.err
		if msg.err != nil {
			r.phase = PhaseFailed
		} else {
			r.phase = PhaseDone
			r.done = r.total
		}
	case closeMsg:
		m.closed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) row(alias string) *row {
	r, ok := m.rows[alias]
	if !ok {
		r = &row{}
		m.rows[alias] = r
		m.order = append(m.order, alias)
	}
	return r
}

// Counts returns how many variables finished and failed.
func (m Model) Counts() (done, failed int) {
	for _, r := range m.rows {
		switch r.phase {
		case PhaseDone:
			done++
		case PhaseFailed:
			failed++
		}
	}
	return done, failed
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(m.title))
	sb.WriteString("\n\n")

	for _, alias := range m.order {
		r := m.rows[alias]
		line := fmt.Sprintf("%s %s %s",
			AliasStyle.Render(fmt.Sprintf("%-18s", alias)),
			phaseStyle(r.phase).Render(fmt.Sprintf("%-10s", r.phase)),
			Bar(r.done, r.total, 30))
		if r.err != nil {
			line += " " + StatusFailed.Render(r.err.Error())
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	done, failed := m.Counts()
	sb.WriteString("\n")
	sb.WriteString(Subtle.Render(fmt.Sprintf("%d/%d done, %d failed", done, len(m.order), failed)))
	if !m.closed {
		sb.WriteString("  ")
		sb.WriteString(KeyHint.Render("q: hide"))
	}
	return Panel.Render(sb.String()) + "\n"
}

// Dashboard is an Observer that drives a full-terminal bubbletea view.
type Dashboard struct {
	program *tea.Program
}

func NewDashboard(title string, aliases []string, opts ...tea.ProgramOption) *Dashboard {
	return &Dashboard{program: tea.NewProgram(NewModel(title, aliases), opts...)}
}

// Run blocks until Close is called or the user quits.
func (d *Dashboard) Run() error {
	_, err := d.program.Run()
	return err
}

func (d *Dashboard) Step(alias string, phase Phase, done, total int) {
	d.program.Send(stepMsg{alias: alias, phase: phase, done: done, total: total})
}

func (d *Dashboard) Finished(alias string, err error) {
	d.program.Send(finishedMsg{alias: alias, err: err})
}

func (d *Dashboard) Close() {
	d.program.Send(closeMsg{})
}
