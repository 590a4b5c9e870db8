package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasjulianto/app-video-cutter/clip"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	require.True(t, ok)
	return pm, cmd
}

func TestProgressModel_Progress(t *testing.T) {
	m := NewProgressModel("match.mp4", make(chan tea.Msg), nil, nil)
	assert.Contains(t, m.View(), "Inspecting video")

	m, cmd := update(t, m, progressMsg(clip.Progress{
		Completed: 2, Total: 5, Message: "Processing clip 2/5",
		Clip: clip.Descriptor{Index: 2, OutputPath: "/out/clip_002.mp4"},
	}))
	assert.NotNil(t, cmd, "keeps listening for events")
	m, _ = update(t, m, progressMsg(clip.Progress{
		Completed: 3, Total: 5, Err: errors.New("exit 1"),
		Clip: clip.Descriptor{Index: 1, OutputPath: "/out/clip_001.mp4"},
	}))

	view := m.View()
	assert.Contains(t, view, "3/5 clips")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "60%")
	assert.Contains(t, view, "clip_001.mp4")
}

func TestProgressModel_CancelThenForceStop(t *testing.T) {
	cancels, stops := 0, 0
	m := NewProgressModel("x", make(chan tea.Msg), func() { cancels++ }, func() { stops++ })

	m, cmd := update(t, m, key("q"))
	assert.Nil(t, cmd, "cancelling does not quit before the run returns")
	assert.Equal(t, 1, cancels)
	assert.Equal(t, 0, stops)
	assert.Contains(t, m.View(), "Cancelling")

	m, _ = update(t, m, key("ctrl+c"))
	assert.Equal(t, 1, cancels)
	assert.Equal(t, 1, stops)

	_, _ = update(t, m, key("esc"))
	assert.Equal(t, 2, stops)
}

func TestProgressModel_Done(t *testing.T) {
	m := NewProgressModel("x", make(chan tea.Msg), nil, nil)
	res := clip.RunResult{Total: 5, Succeeded: 2, Skipped: 3, Cancelled: true}

	m, cmd := update(t, m, doneMsg{result: res})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, m.Done())
	got, err := m.Result()
	assert.NoError(t, err)
	assert.Equal(t, res, got)
	assert.Contains(t, m.View(), "Cancelled")
	assert.Contains(t, m.View(), "3 skipped")
}

func TestProgressModel_Resize(t *testing.T) {
	m := NewProgressModel("x", make(chan tea.Msg), nil, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 300, Height: 40})
	assert.Equal(t, 100, m.width)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 40})
	assert.Equal(t, 40, m.width)
}

func TestProgressModel_Tick(t *testing.T) {
	m := NewProgressModel("x", make(chan tea.Msg), nil, nil)
	m, cmd := update(t, m, tickMsg(m.started.Add(83*time.Second)))
	assert.NotNil(t, cmd, "schedules the next tick")
	assert.Equal(t, 83*time.Second, m.elapsed)
	assert.Contains(t, m.View(), "0:01:23")

	m, _ = update(t, m, doneMsg{})
	_, cmd = update(t, m, tickMsg(time.Now()))
	assert.Nil(t, cmd, "stops ticking once the run is done")
}

func TestWaitForMsg_Closed(t *testing.T) {
	ch := make(chan tea.Msg)
	close(ch)
	assert.Nil(t, waitForMsg(ch)())
}
