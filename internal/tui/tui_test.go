package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/download"
	"github.com/handiism/modrinth-downloader/internal/model"
)

func newTestModel() Model {
	settings := config.DefaultSettings()
	settings.GameVersion = "1.21.8"
	return NewModel(settings, nil, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got
}

func TestModel_DefaultsFromSettings(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, model.Criteria{GameVersion: "1.21.8", Loader: "fabric", Channel: "release"}, m.criteria())
	assert.Equal(t, StateInput, m.state)
}

func TestModel_TabCyclesFocus(t *testing.T) {
	m := newTestModel()
	for want := 1; want <= focusCount; want++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, want%focusCount, m.focus)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusChannel, m.focus)
}

func TestModel_StartRequiresLinks(t *testing.T) {
	m := newTestModel()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})

	assert.Equal(t, StateInput, m.state)
	require.Len(t, m.logs, 1)
	assert.Equal(t, download.LevelWarning, m.logs[0].Level)
}

func TestModel_StartRequiresCriteria(t *testing.T) {
	m := newTestModel()
	m.links.SetValue("https://modrinth.com/mod/sodium")
	m.inputs[0].SetValue("")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Equal(t, StateInput, m.state)
	require.Len(t, m.logs, 1)
	assert.Contains(t, m.logs[0].Message, "invalid criteria")
}

func TestModel_LinksMode(t *testing.T) {
	m := newTestModel()
	m.links.SetValue("https://modrinth.com/mod/sodium\nnot a link")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	m = next.(Model)
	assert.Equal(t, ModeLinks, m.mode)

	msg := cmd()
	done, ok := msg.(LinksDoneMsg)
	require.True(t, ok, "expected LinksDoneMsg, got %T", msg)
	require.NoError(t, done.Err)
	require.Len(t, done.Links, 2)

	m = update(t, m, done)
	assert.Equal(t, StateComplete, m.state)
	assert.Contains(t, m.output, "https://modrinth.com/mod/sodium?version=1.21.8&loader=fabric#download")
	assert.Contains(t, m.output, "not a link")
}

func TestModel_BundleFailed(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning
	m.mode = ModeBundle

	m = update(t, m, BundleDoneMsg{Result: &model.BundleResult{
		State: model.StateFailed,
		Err:   model.ErrArchiveEmpty,
		Lines: []model.LineResult{{Line: model.InputLine{RawURL: "x"}, Outcome: model.Invalid("x")}},
	}})

	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, model.ErrArchiveEmpty)
	assert.Contains(t, m.View(), "invalid input: x")
}

func TestModel_BundleReady(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning
	m.mode = ModeBundle

	m = update(t, m, BundleDoneMsg{
		Result: &model.BundleResult{State: model.StateReady, FileName: "mods-1.21.8-fabric.zip", Added: []string{"a.jar"}, Data: []byte("zip")},
		Path:   "/tmp/mods-1.21.8-fabric.zip",
	})

	assert.Equal(t, StateComplete, m.state)
	view := m.View()
	assert.Contains(t, view, "/tmp/mods-1.21.8-fabric.zip")
	assert.Contains(t, view, "Files: 1")
}

func TestModel_BundleError(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning

	m = update(t, m, BundleDoneMsg{Err: errors.New("disk full")})
	assert.Equal(t, StateError, m.state)
	assert.EqualError(t, m.err, "disk full")
}

func TestModel_ResetKeepsText(t *testing.T) {
	m := newTestModel()
	m.links.SetValue("https://modrinth.com/mod/sodium")
	m.state = StateError
	m.err = errors.New("boom")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})

	assert.Equal(t, StateInput, m.state)
	assert.NoError(t, m.err)
	assert.Equal(t, "https://modrinth.com/mod/sodium", m.links.Value())
}

func TestModel_VerboseFilter(t *testing.T) {
	m := newTestModel()
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "detail", Level: download.LevelVerbose}})
	assert.Empty(t, m.logs)

	m.verbose = true
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "detail", Level: download.LevelVerbose}})
	require.Len(t, m.logs, 1)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		p    download.Progress
		want float64
	}{
		{"idle", download.Progress{}, 0},
		{"half", download.Progress{State: model.StateDownloadingFiles, Total: 4, Added: 1, Failed: 1}, 0.5},
		{"compressing", download.Progress{State: model.StateCompressing, Total: 4}, 1},
		{"failed", download.Progress{State: model.StateFailed}, 1},
		{"mid file", download.Progress{State: model.StateDownloadingFiles, Total: 2, Added: 1, BytesWritten: 50, BytesTotal: 100}, 0.75},
		{"unknown length", download.Progress{State: model.StateDownloadingFiles, Total: 2, BytesWritten: 50, BytesTotal: -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, percent(tt.p), 1e-9)
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Downloading files", capitalize("downloading files"))
	assert.Equal(t, "", capitalize(""))
	assert.True(t, strings.HasPrefix(capitalize(model.StateCompressing.String()), "C"))
}

func TestModel_EscDoesNotAbortRun(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Equal(t, StateRunning, m.state)
	assert.NoError(t, m.ctx.Err())
	assert.Contains(t, m.getHelpText(), "ctrl+c")
}

func TestModel_RunningShowsBytes(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning
	m.current = download.Progress{
		State:        model.StateDownloadingFiles,
		Index:        1,
		Total:        3,
		FileName:     "sodium.jar",
		BytesWritten: 1000,
		BytesTotal:   2000,
	}

	assert.Contains(t, m.View(), "1/3 – sodium.jar 1.0 kB / 2.0 kB")
}

func TestModel_SavesUsedCriteria(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newTestModel()
	m.configPath = path
	m.links.SetValue("https://modrinth.com/mod/sodium")
	m.inputs[1].SetValue("quilt")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "quilt", m.settings.Loader)

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.Criteria{GameVersion: "1.21.8", Loader: "quilt", Channel: "release"}, saved.Criteria())
}

func TestModel_UnchangedCriteriaNotSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := newTestModel()
	m.configPath = path
	m.links.SetValue("https://modrinth.com/mod/sodium")

	update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
