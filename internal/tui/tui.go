package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/logconv/convert"
	"github.com/sokinpui/logconv/internal/ui"
	"github.com/sokinpui/logconv/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type progressMsg struct {
	current, total int
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app      *convert.App
	name     string
	spinner  spinner.Model
	state    state
	summary  summaryMsg
	progress progressMsg
	err      error
	program  *tea.Program
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// New creates the interactive view. name is the token name used in the
// total line.
func New(app *convert.App, name string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &Model{
		app:     app,
		name:    name,
		spinner: s,
		state:   stateProcessing,
	}
}

// SetProgram wires progress reporting from the app into the program.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.app.SetProgressCallback(func(current, total int) {
		p.Send(progressMsg{current: current, total: total})
	})
}

// Err returns the error the run finished with, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case progressMsg:
		m.progress = msg
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.progress.total > 0 {
			return fmt.Sprintf("%s Converting... %s\n", m.spinner.View(),
				faintStyle.Render(fmt.Sprintf("[%d/%d]", m.progress.current, m.progress.total)))
		}
		return fmt.Sprintf("%s Scanning...\n", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	if m.summary.DryRun {
		b.WriteString(headerStyle.Render("Dry run, no files written"))
		b.WriteString("\n")
	}

	for _, r := range m.summary.Converted {
		b.WriteString(successStyle.Render(ui.ConvertedLine(r)))
		b.WriteString("\n")
	}
	if len(m.summary.Converted) == 0 {
		b.WriteString(faintStyle.Render(ui.TotalLine(m.summary.Summary, m.name)))
	} else {
		b.WriteString(headerStyle.Render(ui.TotalLine(m.summary.Summary, m.name)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		// Check for detailed error to print stack
		var detailed *convert.DetailedError
		if errors.As(err, &detailed) {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{
		Summary: summary,
	}
}
