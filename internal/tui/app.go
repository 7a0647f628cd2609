package tui

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/countdown/internal/countdown"
	"github.com/sadopc/countdown/internal/export"
	"github.com/sadopc/countdown/internal/store"
)

var lastMount int64

func nextMount() int64 {
	return atomic.AddInt64(&lastMount, 1)
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	clock  countdown.Clock
	width  int
	height int

	// mount identifies this App instance; splash messages for any other
	// mount are ignored.
	mount   int64
	loading bool
	torn    bool
	spinner spinner.Model

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	timer   timerModel
	history historyModel

	// Quit confirmation while the countdown is running. The bound value is
	// a pointer so it survives value copies of App.
	formActive  bool
	quitForm    *huh.Form
	confirmQuit *bool

	help      help.Model
	status    string
	statusErr bool
}

// Option configures an App.
type Option func(*App)

// WithClock replaces the wall clock used by the countdown and history.
func WithClock(c countdown.Clock) Option {
	return func(a *App) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithExportDir sets where history exports are written. Defaults to the
// user's home directory.
func WithExportDir(dir string) Option {
	return func(a *App) { a.exportDir = dir }
}

func NewApp(s *store.Store, opts ...Option) App {
	a := App{
		store:   s,
		clock:   countdown.SystemClock,
		mount:   nextMount(),
		loading: true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(colorReset)),
		),
	}
	for _, opt := range opts {
		opt(&a)
	}

	h := help.New()
	h.ShowAll = false
	a.help = h

	confirm := false
	a.confirmQuit = &confirm

	a.timer = newTimerModel(s, a.clock)
	a.history = newHistoryModel(s, a.clock)
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		splashCmd(a.mount),
		a.spinner.Tick,
		a.history.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		return a, nil

	case splashDoneMsg:
		if msg.mount == a.mount && !a.torn {
			a.loading = false
		}
		return a, nil

	case spinner.TickMsg:
		// Dropping the tick once the splash is gone stops the spinner.
		if !a.loading || a.torn {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.formActive {
			return a.updateQuitForm(msg)
		}
		if key.Matches(msg, keys.Quit) {
			return a.quit()
		}
		if a.loading || a.torn {
			return a, nil
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.History):
			if a.activeView == viewHistory {
				a.activeView = viewTimer
				return a, nil
			}
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		}

		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case tickMsg:
		if a.torn {
			return a, nil
		}
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case countdownDoneMsg:
		return a, a.history.refresh()

	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			log.Printf("countdown: %s", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	if a.formActive {
		return a.updateQuitForm(msg)
	}
	return a, nil
}

// quit tears the screen down, asking first when a countdown is running.
func (a App) quit() (tea.Model, tea.Cmd) {
	if !a.timer.running() || a.torn {
		return a.shutdown()
	}

	*a.confirmQuit = false
	a.quitForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("A countdown is running. Quit anyway?").
				Affirmative("Quit").
				Negative("Keep running").
				Value(a.confirmQuit),
		),
	).WithShowHelp(false)
	a.formActive = true
	return a, a.quitForm.Init()
}

func (a App) updateQuitForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.quitForm = nil
			return a, nil
		}
	}

	form, cmd := a.quitForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.quitForm = f
	}

	switch a.quitForm.State {
	case huh.StateCompleted:
		a.formActive = false
		a.quitForm = nil
		if *a.confirmQuit {
			return a.shutdown()
		}
		return a, nil
	case huh.StateAborted:
		a.formActive = false
		a.quitForm = nil
		return a.shutdown()
	}
	return a, cmd
}

// shutdown releases the countdown and splash before quitting. Ticks or
// splash messages still in flight are ignored once torn is set.
func (a App) shutdown() (tea.Model, tea.Cmd) {
	a.torn = true
	var err error
	a.timer, err = a.timer.teardown()
	if err != nil {
		log.Printf("countdown: close run on quit: %v", err)
	}
	return a, tea.Quit
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	if a.loading {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				a.spinner.View(),
				"",
				titleStyle.Render("Loading..."),
			),
		)
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewHistory:
		content = a.history.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}
	if a.formActive && a.quitForm != nil {
		content = activePanelStyle.Width(a.width - 4).Render(a.quitForm.View())
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("countdown")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	today := mutedStyle.Render(fmt.Sprintf(" today: %d", a.history.today))
	if a.activeView == viewHistory && a.timer.running() {
		today = pauseStyle.Render(" ● "+a.timer.displayText()) + today
	}

	left := footerStyle.Render(helpView)
	right := today + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export History")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		runs, err := a.store.ListRuns(store.RunFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dir := a.exportDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		dateStr := a.clock.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("countdown-export-%s.csv", dateStr))
			if err := export.ToCSV(runs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("countdown-export-%s.json", dateStr))
			if err := export.ToJSON(runs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
