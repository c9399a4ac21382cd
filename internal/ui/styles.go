package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the terse badge-per-line status output the CLI prints.
var (
	ColorSuccess = lipgloss.Color("#66BB6A")
	ColorError   = lipgloss.Color("#EF5350")
	ColorInfo    = lipgloss.Color("#29B6F6")
	ColorMuted   = lipgloss.Color("#9E9E9E")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// PrintSuccess, PrintInfo, and PrintError print a colored status line to
// stdout.
func PrintSuccess(msg string) { fmt.Println(successStyle.Render("✓ " + msg)) }
func PrintInfo(msg string)    { fmt.Println(infoStyle.Render(msg)) }
func PrintError(msg string)   { fmt.Println(errorStyle.Render("✗ " + msg)) }
func PrintMuted(msg string)   { fmt.Println(mutedStyle.Render(msg)) }
