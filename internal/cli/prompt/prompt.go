// Package prompt wraps promptui for the interactive parts of the CLIs:
// confirmations before destructive commands and credential entry during
// login and mount setup.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user backed out of a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// wrap normalizes promptui's interrupt and abort errors to ErrAborted so
// callers have a single sentinel to check.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Confirm asks a yes/no question. Ctrl+C returns ErrAborted; answering "n"
// returns false with no error.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, hint),
		IsConfirm: true,
	}

	result, err := p.Run()
	switch {
	case err == nil:
		answer := strings.ToLower(result)
		return answer == "y" || answer == "yes", nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		// promptui reports any non-affirmative answer as ErrAbort.
		return false, nil
	case result == "":
		return defaultYes, nil
	default:
		return false, err
	}
}

// ConfirmWithForce skips the prompt entirely when force is set, for
// --force flags on delete commands.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

// Input asks for a line of text, offering defaultValue when the user just
// presses Enter.
func Input(label, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	result, err := p.Run()
	return result, wrap(err)
}

// InputRequired asks for a line of text and re-prompts until it gets a
// non-blank answer.
func InputRequired(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("a value is required")
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrap(err)
}
