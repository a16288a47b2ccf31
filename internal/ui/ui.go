// Package ui provides styled terminal output for the groceryd CLI.
// Styling degrades to plain text when stdout is not a terminal.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Faint(true)

	checkedStyle = lipgloss.NewStyle().Strikethrough(true).Faint(true)
)

// colorEnabled reports whether styled output makes sense for stdout.
func colorEnabled() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

func render(style lipgloss.Style, s string) string {
	if !colorEnabled() {
		return s
	}
	return style.Render(s)
}

// RenderPass styles a success marker.
func RenderPass(s string) string { return render(passStyle, s) }

// RenderWarn styles a warning marker.
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderFail styles a failure marker.
func RenderFail(s string) string { return render(failStyle, s) }

// RenderAccent styles informational text.
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderDim styles secondary text.
func RenderDim(s string) string { return render(dimStyle, s) }

// RenderChecked styles a grocery line that has been ticked off.
func RenderChecked(s string) string { return render(checkedStyle, s) }
