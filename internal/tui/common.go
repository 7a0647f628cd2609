package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active panel.
type viewState int

const (
	viewTimer viewState = iota
	viewHistory
)

var viewNames = []string{"Timer", "History"}

// SplashDelay is how long the loading view is shown after mount.
const SplashDelay = 2 * time.Second

// tickInterval is the nominal period of countdown refreshes.
const tickInterval = time.Second

// --- Messages ---

// tickMsg drives the countdown. gen is the timer generation the tick was
// scheduled under; ticks from an earlier generation are dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// splashDoneMsg ends the loading view of the App with the given mount id.
type splashDoneMsg struct {
	mount int64
}

type statusMsg struct {
	text    string
	isError bool
}

type countdownDoneMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Commands ---

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func splashCmd(mount int64) tea.Cmd {
	return tea.Tick(SplashDelay, func(time.Time) tea.Msg {
		return splashDoneMsg{mount: mount}
	})
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}
