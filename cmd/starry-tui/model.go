package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/starry-habits/pkg/constellation"
	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/validation"
)

type tab int

const (
	tonightTab tab = iota
	weekTab
	tabCount
)

// inputMode is the purpose of the focused text field.
type inputMode int

const (
	inputNone inputMode = iota
	inputHabit
	inputNote
)

type model struct {
	ctx  context.Context
	svc  *constellation.Service
	pick func(n int) int

	currentTab tab
	date       string
	sky        *constellation.View
	week       habits.Week

	habitTable table.Model
	input      textinput.Model
	mode       inputMode
	help       help.Model
	keys       keyMap

	width      int
	height     int
	message    string
	messageErr bool
}

func initialModel(ctx context.Context, svc *constellation.Service) model {
	ti := textinput.New()
	ti.CharLimit = validation.MaxNoteLength
	ti.Width = 50

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: " ", Width: 2},
			{Title: "Habit", Width: 24},
			{Title: "Importance", Width: 10},
			{Title: "Momentum", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dusk).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(night).
		Background(gold).
		Bold(false)
	t.SetStyles(s)

	m := model{
		ctx:        ctx,
		svc:        svc,
		pick:       rand.IntN,
		date:       svc.Today(),
		habitTable: t,
		input:      ti,
		help:       help.New(),
		keys:       keys,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.submitInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.currentTab = (m.currentTab + 1) % tabCount

	case key.Matches(msg, m.keys.ShiftTab):
		m.currentTab = (m.currentTab + tabCount - 1) % tabCount

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()

	case key.Matches(msg, m.keys.Add):
		return m, m.openInput(inputHabit, "", "New habit name")

	case key.Matches(msg, m.keys.Note):
		note := ""
		if m.sky != nil {
			note = m.sky.Note
		}
		return m, m.openInput(inputNote, note, "How did tonight go?")

	case key.Matches(msg, m.keys.Archive):
		m.archiveSelected()

	case key.Matches(msg, m.keys.Reshuffle):
		seed := m.svc.Reshuffle()
		m.setMessage(fmt.Sprintf("The sky rearranges itself (seed %d)", seed), nil)
		m.refresh()

	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDate(-1)

	case key.Matches(msg, m.keys.NextDay):
		m.shiftDate(1)

	case key.Matches(msg, m.keys.Today):
		m.date = m.svc.Today()
		m.refresh()

	default:
		var cmd tea.Cmd
		m.habitTable, cmd = m.habitTable.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) openInput(mode inputMode, value, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CharLimit = validation.MaxNoteLength
	if mode == inputHabit {
		m.input.CharLimit = validation.MaxNameLength
	}
	m.habitTable.Blur()
	return m.input.Focus()
}

func (m *model) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
	m.habitTable.Focus()
}

func (m *model) submitInput() {
	value := m.input.Value()
	switch m.mode {
	case inputHabit:
		req := validation.HabitRequest{Name: value}
		if err := validation.ValidateHabitRequest(&req); err != nil {
			m.setMessage("", err)
			return
		}
		h, err := m.svc.AddHabit(m.ctx, habits.HabitInput{Name: req.Name})
		m.setMessage(fmt.Sprintf("%s %s joins the sky", h.Icon, h.Name), err)
	case inputNote:
		req := validation.NoteRequest{Note: value}
		if err := validation.ValidateNote(&req); err != nil {
			m.setMessage("", err)
			return
		}
		err := m.svc.SetNote(m.ctx, m.date, req.Note)
		m.setMessage("Note saved", err)
	}
	m.closeInput()
	m.refresh()
}

// selected returns the habit under the table cursor.
func (m *model) selected() (habits.Habit, bool) {
	if m.sky == nil || len(m.sky.Stars) == 0 {
		return habits.Habit{}, false
	}
	i := m.habitTable.Cursor()
	if i < 0 || i >= len(m.sky.Stars) {
		return habits.Habit{}, false
	}
	return m.sky.Stars[i].Habit, true
}

func (m *model) toggleSelected() {
	h, ok := m.selected()
	if !ok {
		return
	}
	done, err := m.svc.Toggle(m.ctx, h.ID, m.date)
	if err != nil {
		m.setMessage("", err)
		return
	}
	m.refresh()
	switch {
	case done && m.sky.AllComplete:
		m.setMessage(m.sky.Ritual(m.pick), nil)
	case done:
		m.setMessage(fmt.Sprintf("%s %s shines", h.Icon, h.Name), nil)
	default:
		m.setMessage(fmt.Sprintf("%s %s dims", h.Icon, h.Name), nil)
	}
}

func (m *model) archiveSelected() {
	h, ok := m.selected()
	if !ok {
		return
	}
	err := m.svc.ArchiveHabit(m.ctx, h.ID)
	m.setMessage(fmt.Sprintf("%s %s archived", h.Icon, h.Name), err)
	m.refresh()
}

func (m *model) shiftDate(days int) {
	t, err := habits.ParseDateKey(m.date)
	if err != nil {
		m.setMessage("", err)
		return
	}
	m.date = habits.DateKey(t.AddDate(0, 0, days))
	m.refresh()
}

// refresh reloads the sky and week for the current date.
func (m *model) refresh() {
	sky, err := m.svc.View(m.ctx, m.date)
	if err != nil {
		m.setMessage("", err)
		return
	}
	ref, _ := habits.ParseDateKey(m.date)
	week, err := m.svc.Week(m.ctx, ref)
	if err != nil {
		m.setMessage("", err)
		return
	}
	m.sky = sky
	m.week = week

	rows := make([]table.Row, len(sky.Stars))
	for i, st := range sky.Stars {
		mark := "·"
		if st.Completed {
			mark = "★"
		}
		rows[i] = table.Row{
			mark,
			st.Habit.Icon + " " + st.Habit.Name,
			string(st.Habit.Importance),
			fmt.Sprintf("%d%%", st.Momentum),
		}
	}
	m.habitTable.SetRows(rows)
	if c := m.habitTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.habitTable.SetCursor(len(rows) - 1)
	}
}

func (m *model) setMessage(msg string, err error) {
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	m.message = msg
	m.messageErr = false
}
