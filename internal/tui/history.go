package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/countdown/internal/countdown"
	"github.com/sadopc/countdown/internal/store"
)

const historyDays = 7

type historyModel struct {
	store  *store.Store
	clock  countdown.Clock
	width  int
	height int

	days   []store.DayCount
	recent []store.Run
	today  int

	chart barchart.Model
}

func newHistoryModel(s *store.Store, clock countdown.Clock) historyModel {
	if clock == nil {
		clock = countdown.SystemClock
	}
	return historyModel{
		store: s,
		clock: clock,
		chart: barchart.New(60, 10),
	}
}

func (h *historyModel) setSize(w, hh int) {
	h.width = w
	h.height = hh
	h.buildChart()
}

type historyDataMsg struct {
	days   []store.DayCount
	recent []store.Run
	today  int
	err    error
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := h.clock.Now()
		days, err := h.store.DailyCompleted(now, historyDays)
		if err != nil {
			return historyDataMsg{err: err}
		}
		recent, err := h.store.ListRuns(store.RunFilter{Limit: 5})
		if err != nil {
			return historyDataMsg{err: err}
		}
		msg := historyDataMsg{days: days, recent: recent}
		if len(days) > 0 {
			msg.today = days[len(days)-1].Count
		}
		return msg
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.err != nil {
			return h, statusCmd(fmt.Sprintf("History error: %v", msg.err), true)
		}
		h.days = msg.days
		h.recent = msg.recent
		h.today = msg.today
		h.buildChart()
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if h.height > 30 {
		chartHeight = 12
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range h.days {
		bars = append(bars, barchart.BarData{
			Label: d.Date.Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  "completed",
				Value: float64(d.Count),
				Style: startStyle,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ",
		mutedStyle.Render(fmt.Sprintf("last %d days", historyDays)),
	)

	total := 0
	for _, d := range h.days {
		total += d.Count
	}
	summary := mutedStyle.Render(fmt.Sprintf("  today: %d  week: %d completed", h.today, total))

	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", summary, "", h.renderRecent(w),
		),
	)
}

func (h historyModel) renderRecent(w int) string {
	if len(h.recent) == 0 {
		return mutedStyle.Render("  No countdowns yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %-10s %8s", "Started", "Status", "Elapsed")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 38))))
	for _, r := range h.recent {
		var status string
		switch r.Status {
		case store.StatusCompleted:
			status = startStyle.Render(fmt.Sprintf("%-10s", r.Status))
		case store.StatusReset, store.StatusAbandoned:
			status = mutedStyle.Render(fmt.Sprintf("%-10s", r.Status))
		default:
			status = pauseStyle.Render(fmt.Sprintf("%-10s", r.Status))
		}
		rows = append(rows, fmt.Sprintf("  %-18s %s %8s",
			r.StartedAt.In(time.Local).Format("Jan 02 15:04"), status, countdown.Format(int(r.Elapsed)),
		))
	}
	return strings.Join(rows, "\n")
}
