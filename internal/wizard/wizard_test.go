package wizard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rowmatch/internal/match"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func baseJob(t *testing.T) *match.Job {
	dir := t.TempDir()
	source := filepath.Join(dir, "day1.xlsx")
	lookup := filepath.Join(dir, "lookup.xlsx")
	touch(t, source)
	touch(t, lookup)

	return &match.Job{
		Sources:         []match.SourceSpec{{Path: source, Sheet: "5.1"}},
		LookupFile:      lookup,
		SourceColumn:    "C",
		LookupColumn:    "A",
		HeaderRow:       2,
		LookupHeaderRow: 1,
		OutputDir:       dir,
		OutputName:      "out.xlsx",
		OutputSheet:     "匹配结果",
	}
}

func TestNew_PrefillsFromJob(t *testing.T) {
	job := baseJob(t)
	m := New(job, nil)

	assert.Equal(t, job.Sources[0].Path+"::5.1", m.inputs[fieldSources].Value())
	assert.Equal(t, "C", m.inputs[fieldSourceColumn].Value())
	assert.Equal(t, "out.xlsx", m.inputs[fieldOutputName].Value())
	assert.True(t, m.inputs[fieldSources].Focused())

	got := m.Job()
	assert.Equal(t, job.Sources, got.Sources)
	assert.Equal(t, 2, got.HeaderRow, "settings outside the form are kept")
}

func TestUpdate_FocusNavigation(t *testing.T) {
	m := New(baseJob(t), nil)

	next, _ := m.Update(key(tea.KeyTab))
	m = next.(Model)
	assert.Equal(t, fieldSourceSheet, m.focus)
	assert.True(t, m.inputs[fieldSourceSheet].Focused())
	assert.False(t, m.inputs[fieldSources].Focused())

	next, _ = m.Update(key(tea.KeyShiftTab))
	m = next.(Model)
	next, _ = m.Update(key(tea.KeyShiftTab))
	m = next.(Model)
	assert.Equal(t, fieldOutputSheet, m.focus, "focus wraps around")

	next, _ = m.Update(key(tea.KeyDown))
	m = next.(Model)
	assert.Equal(t, fieldSources, m.focus)
}

func TestUpdate_EditsFocusedField(t *testing.T) {
	job := baseJob(t)
	m := New(job, nil)
	for i := 0; i < fieldSourceSheet; i++ {
		next, _ := m.Update(key(tea.KeyTab))
		m = next.(Model)
	}

	m = typeText(m, "5.2")

	assert.Equal(t, "5.2", m.Job().SourceSheet)
	assert.Equal(t, "C", m.Job().SourceColumn)
}

func TestJob_ParsesSourceList(t *testing.T) {
	m := New(baseJob(t), nil)
	m.inputs[fieldSources].SetValue(" a.xlsx::5.1 , b.xlsx,, ")

	assert.Equal(t, []match.SourceSpec{
		{Path: "a.xlsx", Sheet: "5.1"},
		{Path: "b.xlsx"},
	}, m.Job().Sources)
}

func TestJob_KeepsConfiguredSourceSheets(t *testing.T) {
	job := baseJob(t)
	job.SourceSheets = map[string]string{"b.xlsx": "5.2", "c.xlsx": "5.3"}
	m := New(job, nil)
	m.inputs[fieldSources].SetValue("a.xlsx::5.1, b.xlsx, c.xlsx::Sheet9, d.xlsx")

	assert.Equal(t, []match.SourceSpec{
		{Path: "a.xlsx", Sheet: "5.1"},
		{Path: "b.xlsx", Sheet: "5.2"},
		{Path: "c.xlsx", Sheet: "Sheet9"},
		{Path: "d.xlsx"},
	}, m.Job().Sources)
}

func TestUpdate_InvalidFormStaysOpen(t *testing.T) {
	m := New(baseJob(t), func(*match.Job) (*match.Result, error) {
		t.Fatal("run must not be called for an invalid form")
		return nil, nil
	})
	m.inputs[fieldLookupFile].SetValue("")

	next, cmd := m.Update(key(tea.KeyCtrlR))
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, stateForm, m.state)
	assert.ErrorIs(t, m.formErr, match.ErrInvalidJob)
	assert.Contains(t, m.View(), "choose a lookup file")
}

func TestUpdate_RunsJobInBackground(t *testing.T) {
	var ran *match.Job
	want := &match.Result{Matched: 3, SavedPath: "out_20250502_143000.xlsx"}
	m := New(baseJob(t), func(job *match.Job) (*match.Result, error) {
		ran = job
		return want, nil
	})

	// enter on every field walks to the end and then starts the run
	var cmd tea.Cmd
	for i := 0; i < fieldCount; i++ {
		var next tea.Model
		next, cmd = m.Update(key(tea.KeyEnter))
		m = next.(Model)
	}
	require.Equal(t, stateRunning, m.state)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "please wait")

	next, _ := m.Update(cmd())
	m = next.(Model)

	require.NotNil(t, ran)
	assert.Equal(t, "out.xlsx", ran.OutputName)
	assert.Equal(t, stateDone, m.state)
	result, err := m.Result()
	require.NoError(t, err)
	assert.Equal(t, want, result)
	assert.Contains(t, m.View(), "Matched 3 rows")
	assert.Contains(t, m.View(), "out_20250502_143000.xlsx")

	_, cmd = m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdate_NoMatchesResult(t *testing.T) {
	m := New(baseJob(t), nil)
	m.state = stateRunning

	next, _ := m.Update(runFinishedMsg{result: &match.Result{}, err: match.ErrNoMatches})
	m = next.(Model)

	assert.Equal(t, stateDone, m.state)
	assert.Contains(t, m.View(), "No matching rows found")
}

func TestUpdate_RunError(t *testing.T) {
	m := New(baseJob(t), nil)
	m.state = stateRunning

	next, _ := m.Update(runFinishedMsg{err: errors.New("lookup sheet is empty")})
	m = next.(Model)

	_, err := m.Result()
	assert.EqualError(t, err, "lookup sheet is empty")
	assert.Contains(t, m.View(), "lookup sheet is empty")
}

func TestUpdate_KeysIgnoredWhileRunning(t *testing.T) {
	m := New(baseJob(t), nil)
	m.state = stateRunning

	next, cmd := m.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, stateRunning, next.(Model).state)

	_, cmd = m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
