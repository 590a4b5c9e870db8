// Package tui provides the terminal front end of a cutting run: a
// bubbletea progress view and the huh settings form.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dimasjulianto/app-video-cutter/clip"
	"github.com/dimasjulianto/app-video-cutter/tui/components"
	"github.com/dimasjulianto/app-video-cutter/tui/styles"
)

const (
	defaultWidth = 60
	tickInterval = time.Second
)

// tickMsg refreshes the elapsed time.
type tickMsg time.Time

// progressMsg carries one clip's progress from the run goroutine.
type progressMsg clip.Progress

// doneMsg is sent once when the run returns.
type doneMsg struct {
	result clip.RunResult
	err    error
}

// waitForMsg returns a tea.Cmd that waits for the next message on the channel.
func waitForMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// tickCmd returns a command that sends a tickMsg after the tick interval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ProgressModel shows the progress of one run. The first q/esc/ctrl+c
// requests cancellation; a second one force-stops running encoders.
type ProgressModel struct {
	title     string
	events    <-chan tea.Msg
	cancel    func()
	forceStop func()

	width   int
	state   components.ProgressState
	started time.Time
	elapsed time.Duration
	presses int
	done    bool
	result  clip.RunResult
	err     error
}

// NewProgressModel returns a model reading events from ch.
func NewProgressModel(title string, ch <-chan tea.Msg, cancel, forceStop func()) ProgressModel {
	return ProgressModel{
		title:     title,
		events:    ch,
		cancel:    cancel,
		forceStop: forceStop,
		width:     defaultWidth,
		started:   time.Now(),
		state:     components.ProgressState{Message: "Inspecting video..."},
	}
}

// Init starts listening for run events.
func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(waitForMsg(m.events), tickCmd())
}

// Update handles key presses, window resizes and run events.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > 100 {
			m.width = 100
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			m.presses++
			if m.presses == 1 {
				m.state.Cancelling = true
				if m.cancel != nil {
					m.cancel()
				}
			} else if m.forceStop != nil {
				m.forceStop()
			}
		}
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started)
		return m, tickCmd()

	case progressMsg:
		m.state.Total = msg.Total
		m.state.Completed = msg.Completed
		m.state.Message = msg.Message
		m.state.LastFile = filepath.Base(msg.Clip.OutputPath)
		if msg.Err != nil {
			m.state.Errors++
		}
		return m, waitForMsg(m.events)

	case doneMsg:
		m.done = true
		m.elapsed = time.Since(m.started)
		m.result = msg.result
		m.err = msg.err
		m.state.Total = msg.result.Total
		m.state.Skipped = msg.result.Skipped
		m.state.Status = msg.result.Status()
		return m, tea.Quit
	}
	return m, nil
}

// View renders the title, the progress box and the status bar.
func (m ProgressModel) View() string {
	var hint string
	switch {
	case m.done:
	case m.presses == 0:
		hint = "q/esc: cancel"
	default:
		hint = "q/esc again: stop running encoders now"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(components.ProgressBox(m.state, m.width))
	b.WriteString("\n")
	b.WriteString(components.StatusBar(components.StatusBarState{
		Elapsed:   m.elapsed,
		Completed: m.state.Completed,
		Total:     m.state.Total,
		Hint:      hint,
	}, m.width))
	b.WriteString("\n")
	return b.String()
}

// Done reports whether the run has returned.
func (m ProgressModel) Done() bool { return m.done }

// Result returns the run outcome. It is only meaningful once Done is true.
func (m ProgressModel) Result() (clip.RunResult, error) {
	return m.result, m.err
}

// RunWithProgress runs fn in the background and shows its progress until
// it returns. cancel and forceStop are wired to the cancel keys.
func RunWithProgress(title string, cancel, forceStop func(), fn func(clip.Reporter) (clip.RunResult, error)) (clip.RunResult, error) {
	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		rep := clip.ReporterFunc(func(p clip.Progress) { ch <- progressMsg(p) })
		res, err := fn(rep)
		ch <- doneMsg{result: res, err: err}
	}()

	final, progErr := tea.NewProgram(NewProgressModel(title, ch, cancel, forceStop)).Run()
	if m, ok := final.(ProgressModel); ok && m.Done() {
		return m.Result()
	}

	// The view exited before the run did; stop launching clips and wait.
	if cancel != nil {
		cancel()
	}
	for msg := range ch {
		if d, ok := msg.(doneMsg); ok {
			if d.err == nil && progErr != nil {
				return d.result, fmt.Errorf("progress view: %w", progErr)
			}
			return d.result, d.err
		}
	}
	return clip.RunResult{}, progErr
}
