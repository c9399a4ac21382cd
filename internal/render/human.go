// Package render turns a result.Suite into human, JSON, or JUnit output —
// a pure function of the tree in every case. The human renderer uses
// charmbracelet/lipgloss/table to print a file/test/verdict table.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adamcooper1386/bintest/internal/config"
	"github.com/adamcooper1386/bintest/internal/result"
)

// Human renders a suite result as a colored table plus a summary line.
func Human(suite result.Suite) string {
	var b strings.Builder

	for _, f := range suite.Files {
		b.WriteString(headerStyle.Render(f.Path))
		b.WriteString("\n")

		if f.Error != "" {
			b.WriteString(failedStyle.Render("file error: " + f.Error))
			b.WriteString("\n\n")
			continue
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorHeader)).
			Headers("TEST", "VERDICT", "DURATION").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == 0 {
					return lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
				}
				if col == 1 && row-1 < len(f.Tests) {
					return verdictStyle(f.Tests[row-1].Verdict)
				}
				return lipgloss.Style{}
			})

		for _, tst := range f.Tests {
			t.Row(tst.Name, string(tst.Verdict), strconv.FormatInt(tst.DurationMs, 10)+"ms")
		}
		b.WriteString(t.String())
		b.WriteString("\n\n")
	}

	b.WriteString(Summary(suite))
	return b.String()
}

func verdictStyle(v result.Verdict) lipgloss.Style {
	switch v {
	case result.Passed:
		return passedStyle
	case result.Failed:
		return failedStyle
	case result.Errored:
		return erroredStyle
	case result.Skipped:
		return skippedStyle
	default:
		return lipgloss.Style{}
	}
}

// Summary renders the pass/fail/error/skip counts, colored by the worst
// verdict present (failed, then errored, otherwise passed).
func Summary(suite result.Suite) string {
	var passed, failed, errored, skipped int
	for _, f := range suite.Files {
		for _, tst := range f.Tests {
			switch tst.Verdict {
			case result.Passed:
				passed++
			case result.Failed:
				failed++
			case result.Errored:
				errored++
			case result.Skipped:
				skipped++
			}
		}
	}

	line := fmt.Sprintf("%d passed, %d failed, %d errored, %d skipped",
		passed, failed, errored, skipped)

	switch {
	case failed > 0:
		return failedStyle.Render(line)
	case errored > 0:
		return erroredStyle.Render(line)
	default:
		return passedStyle.Render(line)
	}
}

// ExitCode computes the process exit status for a suite result.
func ExitCode(suite result.Suite) int {
	if suite.Canceled {
		return config.ExitCanceled
	}
	if suite.Error != "" {
		return config.ExitError
	}

	var failed, errored bool
	for _, f := range suite.Files {
		if f.Error != "" {
			errored = true
		}
		for _, tst := range f.Tests {
			switch tst.Verdict {
			case result.Failed:
				failed = true
			case result.Errored:
				errored = true
			}
		}
	}

	switch {
	case failed:
		return config.ExitTestFailure
	case errored:
		return config.ExitError
	default:
		return config.ExitSuccess
	}
}
