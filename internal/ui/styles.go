package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Dim         lipgloss.Style
	SearchBox   lipgloss.Style
	SearchFocus lipgloss.Style
	Panel       lipgloss.Style
	Item        lipgloss.Style
	ItemActive  lipgloss.Style
	URL         lipgloss.Style
	Score       lipgloss.Style
	NoResults   lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	StatusOK    lipgloss.Style
	Help        lipgloss.Style
	Main        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim: lipgloss.NewStyle().Faint(true),
		SearchBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		SearchFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Item:        lipgloss.NewStyle(),
		ItemActive:  lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
		URL:         lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Score:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		NoResults:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true), // yellow
		Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusOK:    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Help:        lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(1, 2),
	}
}
