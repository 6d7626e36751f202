package wizard

import (
	"errors"
	"fmt"
	"strings"

	"rowmatch/internal/logger"
	"rowmatch/internal/match"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UI States
type state int

const (
	stateForm state = iota
	stateRunning
	stateDone
)

const (
	fieldSources = iota
	fieldSourceSheet
	fieldLookupFile
	fieldLookupSheet
	fieldSourceColumn
	fieldLookupColumn
	fieldOutputDir
	fieldOutputName
	fieldOutputSheet
	fieldCount
)

var labels = [fieldCount]string{
	fieldSources:      "Source files (comma separated, path::sheet)",
	fieldSourceSheet:  "Source sheet (blank = active sheet)",
	fieldLookupFile:   "Lookup file",
	fieldLookupSheet:  "Lookup sheet (blank = active sheet)",
	fieldSourceColumn: "Source key column (letter, number or header)",
	fieldLookupColumn: "Lookup key column (letter, number or header)",
	fieldOutputDir:    "Output folder",
	fieldOutputName:   "Output file name",
	fieldOutputSheet:  "Output sheet name",
}

// RunFunc executes a job. match.Run in production.
type RunFunc func(*match.Job) (*match.Result, error)

type runFinishedMsg struct {
	result *match.Result
	err    error
}

// Model is the bubbletea model of the interactive job form.
type Model struct {
	base   *match.Job
	inputs []textinput.Model
	focus  int
	state  state
	run    RunFunc

	result  *match.Result
	err     error
	formErr error

	// Styling
	titleStyle   lipgloss.Style
	labelStyle   lipgloss.Style
	focusedStyle lipgloss.Style
	helpStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
}

// New builds the form prefilled from job. The job's other settings (header
// rows, date rules, fallback) are carried into every run.
func New(job *match.Job, run RunFunc) Model {
	values := [fieldCount]string{
		fieldSources:      joinSources(job.Sources),
		fieldSourceSheet:  job.SourceSheet,
		fieldLookupFile:   job.LookupFile,
		fieldLookupSheet:  job.LookupSheet,
		fieldSourceColumn: job.SourceColumn,
		fieldLookupColumn: job.LookupColumn,
		fieldOutputDir:    job.OutputDir,
		fieldOutputName:   job.OutputName,
		fieldOutputSheet:  job.OutputSheet,
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 512
		in.Width = 60
		in.SetValue(values[i])
		inputs[i] = in
	}
	inputs[0].Focus()

	return Model{
		base:   job,
		inputs: inputs,
		state:  stateForm,
		run:    run,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		focusedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true),
	}
}

func joinSources(sources []match.SourceSpec) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// Job returns the job described by the current form values.
func (m Model) Job() *match.Job {
	job := *m.base
	job.Sources = nil
	for _, raw := range strings.Split(m.value(fieldSources), ",") {
		job.AddSource(raw, job.SourceSheets)
	}
	job.SourceSheet = m.value(fieldSourceSheet)
	job.LookupFile = m.value(fieldLookupFile)
	job.LookupSheet = m.value(fieldLookupSheet)
	job.SourceColumn = m.value(fieldSourceColumn)
	job.LookupColumn = m.value(fieldLookupColumn)
	job.OutputDir = m.value(fieldOutputDir)
	job.OutputName = m.value(fieldOutputName)
	job.OutputSheet = m.value(fieldOutputSheet)
	return &job
}

func (m Model) value(field int) string {
	return strings.TrimSpace(m.inputs[field].Value())
}

// Result is the outcome of the run, if one finished.
func (m Model) Result() (*match.Result, error) {
	return m.result, m.err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runFinishedMsg:
		m.state = stateDone
		m.result = msg.result
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateForm:
			return m.updateForm(msg)
		case stateDone:
			switch msg.String() {
			case "q", "esc", "enter":
				return m, tea.Quit
			}
		}
		return m, nil
	}

	if m.state == stateForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil
	case "enter":
		if m.focus < fieldCount-1 {
			return m.setFocus(m.focus + 1), nil
		}
		return m.start()
	case "ctrl+r":
		return m.start()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) setFocus(i int) Model {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

// start validates the form and hands the job to a background command.
func (m Model) start() (tea.Model, tea.Cmd) {
	job := m.Job()
	if err := job.Validate(); err != nil {
		m.formErr = err
		return m, nil
	}

	m.formErr = nil
	m.state = stateRunning
	logger.Info("Starting job from wizard", "sources", len(job.Sources), "lookup", job.LookupFile)

	run := m.run
	return m, func() tea.Msg {
		result, err := run(job)
		return runFinishedMsg{result: result, err: err}
	}
}

func (m Model) View() string {
	switch m.state {
	case stateRunning:
		return m.titleStyle.Render("rowmatch") + "\n\nMatching rows, please wait...\n"
	case stateDone:
		return m.viewDone()
	default:
		return m.viewForm()
	}
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(m.titleStyle.Render("rowmatch: match rows against a lookup sheet"))
	b.WriteString("\n\n")

	for i, in := range m.inputs {
		label := m.labelStyle.Render(labels[i])
		if i == m.focus {
			label = m.focusedStyle.Render(labels[i])
		}
		b.WriteString(label + "\n" + in.View() + "\n\n")
	}

	if m.formErr != nil {
		b.WriteString(m.errorStyle.Render("✗ "+m.formErr.Error()) + "\n\n")
	}

	b.WriteString(m.helpStyle.Render("tab/↓: next • shift+tab/↑: previous • enter on last field or ctrl+r: run • esc: quit"))
	return b.String()
}

func (m Model) viewDone() string {
	var b strings.Builder
	b.WriteString(m.titleStyle.Render("rowmatch"))
	b.WriteString("\n\n")

	switch {
	case errors.Is(m.err, match.ErrNoMatches):
		b.WriteString(m.errorStyle.Render("No matching rows found, nothing was written.") + "\n")
	case m.err != nil:
		b.WriteString(m.errorStyle.Render("✗ "+m.err.Error()) + "\n")
	case m.result != nil:
		b.WriteString(m.successStyle.Render(fmt.Sprintf("✓ Matched %d rows", m.result.Matched)) + "\n")
		b.WriteString(fmt.Sprintf("Saved to: %s\n", m.result.SavedPath))
	}

	if m.result != nil {
		for _, f := range m.result.Skipped() {
			b.WriteString(m.errorStyle.Render(fmt.Sprintf("skipped %s: %s", f.Path, f.Error)) + "\n")
		}
	}

	b.WriteString("\n" + m.helpStyle.Render("enter/q: quit"))
	return b.String()
}

// Run shows the form, runs the job once submitted and returns its outcome.
// A form closed without running returns a nil result and nil error.
func Run(job *match.Job, run RunFunc) (*match.Result, error) {
	p := tea.NewProgram(New(job, run), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running wizard: %w", err)
	}

	final := finalModel.(Model)
	return final.Result()
}
