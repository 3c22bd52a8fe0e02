package main

import "github.com/charmbracelet/lipgloss"

var (
	gold  = lipgloss.Color("#f6d365")
	dusk  = lipgloss.Color("#565f89")
	mist  = lipgloss.Color("#a9b1d6")
	night = lipgloss.Color("#1a1b26")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(gold).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(night).
			Background(gold).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(dusk).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	skyBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(dusk).
			Padding(0, 1).
			MarginRight(2)

	listBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gold).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(dusk)

	litStyle = lipgloss.NewStyle().Foreground(gold).Bold(true)

	noteStyle = lipgloss.NewStyle().Foreground(mist).Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dusk).
			MarginTop(1).
			MarginLeft(2)
)
