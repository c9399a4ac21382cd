// Package ui provides a small huh-based interactive prompt layer: text
// input, single-select, and confirm, the handful of prompt shapes the
// init wizard needs.
package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned by prompt helpers when the user cancels a form.
var ErrAborted = errors.New("prompt aborted")

// NormalizeAbort turns huh's user-cancellation error into ErrAborted so
// callers can distinguish "user pressed Esc" from a real failure.
func NormalizeAbort(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// IsAbort reports whether err originated from a canceled prompt.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}

// PromptString asks for a single line of free text.
func PromptString(title, placeholder string, validate func(string) error) (string, error) {
	var value string

	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}

	form := huh.NewForm(huh.NewGroup(input)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", NormalizeAbort(err)
	}
	return value, nil
}

// PromptSelect offers a fixed list of options and returns the chosen value.
func PromptSelect(title string, options []string) (string, error) {
	var selected string

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(opts...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return "", NormalizeAbort(err)
	}
	return selected, nil
}

// Confirm asks a yes/no question.
func Confirm(message string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return false, NormalizeAbort(err)
	}
	return confirmed, nil
}
