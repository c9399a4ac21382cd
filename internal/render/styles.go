package render

import "github.com/charmbracelet/lipgloss"

// Color palette for the four verdicts this renderer paints.
var (
	colorPassed  = lipgloss.Color("#66BB6A")
	colorFailed  = lipgloss.Color("#EF5350")
	colorErrored = lipgloss.Color("#FFA726")
	colorSkipped = lipgloss.Color("#9E9E9E")
	colorHeader  = lipgloss.Color("#4CAF50")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	passedStyle = lipgloss.NewStyle().Foreground(colorPassed).Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
	erroredStyle = lipgloss.NewStyle().Foreground(colorErrored).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(colorSkipped)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorSkipped)
)
