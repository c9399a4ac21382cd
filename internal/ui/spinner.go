package ui

import "github.com/charmbracelet/huh/spinner"

// RunWithSpinner runs fn behind an animated spinner carrying title, falling
// back to running fn directly when stdout isn't a terminal (piped output,
// CI logs). fn's own error is returned, not swallowed by the spinner.
func RunWithSpinner(title string, fn func() error) error {
	if !IsInteractive() {
		return fn()
	}
	var fnErr error
	if err := spinner.New().Title(title).Action(func() { fnErr = fn() }).Run(); err != nil {
		return err
	}
	return fnErr
}
