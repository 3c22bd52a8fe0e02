package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/visualization"
)

const (
	minSkyCols = 30
	minSkyRows = 12
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("✦ Starry Habits"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	switch m.currentTab {
	case tonightTab:
		s.WriteString(m.renderTonight())
	case weekTab:
		s.WriteString(m.renderWeek())
	}

	if m.mode != inputNone {
		s.WriteString("\n\n")
		s.WriteString(contentStyle.Render(m.input.View()))
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(contentStyle.Render(errorStyle.Render("✗ " + m.message)))
		} else {
			s.WriteString(contentStyle.Render(successStyle.Render(m.message)))
		}
	}

	s.WriteString("\n")
	if m.mode != inputNone {
		s.WriteString(helpStyle.Render(m.help.View(inputKeys{})))
	} else {
		s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	}
	return s.String()
}

func (m model) renderTabs() string {
	names := []string{"Tonight", "Week"}
	rendered := make([]string, len(names))
	for i, name := range names {
		if tab(i) == m.currentTab {
			rendered[i] = activeTabStyle.Render(name)
		} else {
			rendered[i] = inactiveTabStyle.Render(name)
		}
	}
	return lipgloss.NewStyle().MarginLeft(2).Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

// skySize fits the star grid to the terminal, leaving room for the habit list.
func (m model) skySize() (cols, rows int) {
	cols = max(minSkyCols, m.width-60)
	rows = max(minSkyRows, m.height-16)
	return min(cols, 80), min(rows, 30)
}

func (m model) renderTonight() string {
	if m.sky == nil {
		return contentStyle.Render("Loading the sky...")
	}

	header := fmt.Sprintf("%s  ·  %s",
		habits.FormatDate(m.sky.Date),
		litStyle.Render(fmt.Sprintf("%d/%d lit", m.sky.CompletedCount, m.sky.Total)))
	if m.sky.Date != m.svc.Today() {
		header += dimStyle.Render("  (t returns to today)")
	}

	if m.sky.Total == 0 {
		return contentStyle.Render(header + "\n\n" + dimStyle.Render("No stars yet. Press a to add a habit."))
	}

	cols, rows := m.skySize()
	var grid strings.Builder
	if err := visualization.RenderASCII(&grid, m.sky.Constellation(), cols, rows); err != nil {
		return contentStyle.Render(errorStyle.Render(err.Error()))
	}
	// Drop the legend; the table lists the habits.
	lines := strings.Split(strings.TrimRight(grid.String(), "\n"), "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i, line := range lines {
		line = strings.ReplaceAll(line, "*", litStyle.Render("✦"))
		line = strings.ReplaceAll(line, "o", dimStyle.Render("·"))
		lines[i] = line
	}
	sky := skyBoxStyle.Render(strings.Join(lines, "\n"))

	right := listBoxStyle.Render(m.habitTable.View())
	if m.sky.Note != "" {
		right = lipgloss.JoinVertical(lipgloss.Left, right, noteStyle.Render("“"+m.sky.Note+"”"))
	}

	return contentStyle.Render(header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, sky, right))
}

func (m model) renderWeek() string {
	if len(m.week.Days) == 0 {
		return contentStyle.Render("Loading the week...")
	}

	width := 12
	for _, row := range m.week.Rows {
		width = max(width, lipgloss.Width(row.Habit.Name)+2)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width))
	for _, d := range m.week.Days {
		label := fmt.Sprintf("%-8s", d.Label)
		if d.Status == habits.DayToday {
			label = litStyle.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		b.WriteString(label)
	}
	b.WriteString("Momentum\n")

	for _, row := range m.week.Rows {
		b.WriteString(fmt.Sprintf("%-*s", width, row.Habit.Name))
		for i, done := range row.Done {
			switch {
			case done:
				b.WriteString(litStyle.Render(fmt.Sprintf("%-8s", "★")))
			case m.week.Days[i].Status == habits.DayFuture:
				b.WriteString(strings.Repeat(" ", 8))
			default:
				b.WriteString(dimStyle.Render(fmt.Sprintf("%-8s", "·")))
			}
		}
		b.WriteString(fmt.Sprintf("%d%%\n", row.Momentum))
	}

	b.WriteString("\n" + strings.Repeat(" ", width))
	for _, d := range m.week.Days {
		b.WriteString(fmt.Sprintf("%-8s", densityBar(d.Density)))
	}
	return contentStyle.Render(listBoxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// densityBar draws a day's completion share as a short bar.
func densityBar(density float64) string {
	const width = 5
	filled := int(density*width + 0.5)
	return strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
}
