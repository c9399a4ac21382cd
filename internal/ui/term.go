package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// IsInteractive reports whether stdin and stdout are both attached to a
// terminal, the signal used to decide whether to run prompts or fall back
// to flags/non-interactive behavior.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}
