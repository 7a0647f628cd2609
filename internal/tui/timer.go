package tui

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/countdown/internal/countdown"
	"github.com/sadopc/countdown/internal/store"
)

// timerModel is the countdown screen: the timer itself, its controls, and
// the history run it is recording into.
type timerModel struct {
	store  *store.Store
	clock  countdown.Clock
	width  int
	height int

	countdown countdown.Timer
	bar       progress.Model

	// runID is the open history run, 0 when none.
	runID int64
}

func newTimerModel(s *store.Store, clock countdown.Clock) timerModel {
	if clock == nil {
		clock = countdown.SystemClock
	}
	return timerModel{
		store:     s,
		clock:     clock,
		countdown: countdown.New(clock),
		bar: progress.New(
			progress.WithGradient(string(colorStart), string(colorPause)),
			progress.WithoutPercentage(),
			progress.WithWidth(40),
		),
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
	barWidth := w - 16
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	t.bar.Width = barWidth
}

func (t timerModel) running() bool {
	return t.countdown.Running()
}

// displayText is the remaining time as M:SS.
func (t timerModel) displayText() string {
	return countdown.Format(t.countdown.Remaining())
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// A tick from an earlier Running interval ends here without
		// rescheduling; that is what releases the periodic work.
		if msg.gen != t.countdown.Generation() || !t.countdown.Running() {
			return t, nil
		}
		if t.countdown.Recompute() {
			return t.expire()
		}
		return t, tickCmd(t.countdown.Generation())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle):
			return t.toggle()
		case key.Matches(msg, keys.Reset):
			return t.reset()
		}
	}
	return t, nil
}

func (t timerModel) toggle() (timerModel, tea.Cmd) {
	if t.countdown.Running() {
		return t.pause()
	}
	return t.start()
}

func (t timerModel) start() (timerModel, tea.Cmd) {
	if !t.countdown.Start() {
		if t.countdown.State() == countdown.Expired {
			return t, statusCmd("Countdown finished, press r to reset", false)
		}
		return t, nil
	}
	deadline, _ := t.countdown.Deadline()
	log.Printf("countdown: start gen=%d remaining=%d deadline=%s",
		t.countdown.Generation(), t.countdown.Remaining(), deadline.Format("15:04:05"))

	cmds := []tea.Cmd{tickCmd(t.countdown.Generation())}
	if err := t.recordStart(); err != nil {
		cmds = append(cmds, statusCmd(fmt.Sprintf("History error: %v", err), true))
	}
	return t, tea.Batch(cmds...)
}

func (t timerModel) pause() (timerModel, tea.Cmd) {
	if !t.countdown.Pause() {
		return t, nil
	}
	log.Printf("countdown: pause gen=%d remaining=%d", t.countdown.Generation(), t.countdown.Remaining())

	if t.runID > 0 {
		if err := t.store.UpdateRunStatus(t.runID, store.StatusPaused); err != nil {
			return t, statusCmd(fmt.Sprintf("History error: %v", err), true)
		}
	}
	return t, nil
}

func (t timerModel) reset() (timerModel, tea.Cmd) {
	elapsed := int64(t.countdown.Elapsed().Seconds())
	t.countdown.Reset()
	log.Printf("countdown: reset gen=%d", t.countdown.Generation())

	if err := t.finishRun(store.StatusReset, elapsed); err != nil {
		return t, statusCmd(fmt.Sprintf("History error: %v", err), true)
	}
	return t, statusCmd("Timer reset", false)
}

func (t timerModel) expire() (timerModel, tea.Cmd) {
	log.Printf("countdown: expired gen=%d", t.countdown.Generation())

	if err := t.finishRun(store.StatusCompleted, countdown.TotalSeconds); err != nil {
		return t, statusCmd(fmt.Sprintf("History error: %v", err), true)
	}
	return t, tea.Batch(
		statusCmd("Countdown complete!", false),
		func() tea.Msg { return countdownDoneMsg{} },
	)
}

// teardown stops the countdown so pending ticks are dropped and closes any
// open history run.
func (t timerModel) teardown() (timerModel, error) {
	elapsed := int64(t.countdown.Elapsed().Seconds())
	t.countdown.Pause()
	if err := t.finishRun(store.StatusAbandoned, elapsed); err != nil {
		return t, err
	}
	return t, nil
}

// recordStart opens a history run on the first start after Idle and marks
// an existing run as running again on resume.
func (t *timerModel) recordStart() error {
	if t.runID > 0 {
		return t.store.UpdateRunStatus(t.runID, store.StatusRunning)
	}
	run, err := t.store.BeginRun(countdown.TotalSeconds, t.clock.Now())
	if err != nil {
		return err
	}
	t.runID = run.ID
	return nil
}

func (t *timerModel) finishRun(status string, elapsed int64) error {
	if t.runID == 0 {
		return nil
	}
	id := t.runID
	t.runID = 0
	return t.store.FinishRun(id, status, t.clock.Now(), elapsed)
}

func (t timerModel) view() string {
	w := t.width - 4

	display := t.displayText()
	var digits string
	if bigTextWidth(display)+8 <= w {
		digits = bigText(display)
	} else {
		digits = display
	}
	timeDisplay := timerStyle.Width(w - 6).Render(digits)

	var label string
	switch t.countdown.State() {
	case countdown.Idle:
		label = mutedStyle.Render("Ready")
	case countdown.Running:
		label = pauseStyle.Bold(true).Render("RUNNING")
	case countdown.Paused:
		label = startStyle.Bold(true).Render("PAUSED")
	case countdown.Expired:
		label = errorStyle.Bold(true).Render("TIME'S UP")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		"",
		label,
		"",
		t.bar.ViewAs(t.countdown.Fraction()),
		"",
		t.renderControls(),
	)

	return panelStyle.Width(w).Render(content)
}

// renderControls draws the start/pause toggle and the reset button. The
// toggle shows pause in orange while running and play in green otherwise.
func (t timerModel) renderControls() string {
	var toggle string
	if t.countdown.Running() {
		toggle = controlStyle.
			Foreground(colorPause).
			BorderForeground(colorPause).
			Render("⏸  pause")
	} else {
		toggle = controlStyle.
			Foreground(colorStart).
			BorderForeground(colorStart).
			Render("▶  start")
	}
	reset := controlStyle.
		Foreground(colorReset).
		BorderForeground(colorReset).
		Render("↺  reset")

	return lipgloss.JoinHorizontal(lipgloss.Center, toggle, "   ", reset)
}
