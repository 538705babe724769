// Package theme provides the lipgloss styles used by the specify TUI, based on the
// Catppuccin Macchiato palette. See https://catppuccin.com/palette/.
package theme

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

// The parts of the palette in use.
const (
	Mauve    = lipgloss.Color("#c6a0f6")
	Red      = lipgloss.Color("#ed8796")
	Green    = lipgloss.Color("#a6da95")
	Blue     = lipgloss.Color("#8aadf4")
	Subtext0 = lipgloss.Color("#a5adcb")
	Overlay0 = lipgloss.Color("#6e738d")
)

// Picker returns the styles for the spec file picker.
//
// Spec files stand out in green against the rest of the directory, anything that
// can't be picked is dimmed.
func Picker() filepicker.Styles {
	styles := filepicker.DefaultStyles()

	styles.Cursor = lipgloss.NewStyle().Foreground(Mauve)
	styles.Selected = lipgloss.NewStyle().Foreground(Mauve).Bold(true)
	styles.Directory = lipgloss.NewStyle().Foreground(Blue)
	styles.File = lipgloss.NewStyle().Foreground(Green)
	styles.DisabledFile = lipgloss.NewStyle().Foreground(Overlay0)
	styles.DisabledCursor = lipgloss.NewStyle().Foreground(Overlay0)
	styles.FileSize = lipgloss.NewStyle().Foreground(Subtext0).Width(fileSizeWidth).Align(lipgloss.Right)
	styles.EmptyDirectory = lipgloss.NewStyle().Foreground(Overlay0).PaddingLeft(paddingLeft).SetString("No spec files here.")

	return styles
}

// Error returns the style for error messages shown in the TUI.
func Error() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Red)
}

const (
	fileSizeWidth = 7 // Wide enough for "1023.9K"
	paddingLeft   = 2
)
