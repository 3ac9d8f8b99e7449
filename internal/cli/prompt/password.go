package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch is returned when a confirmation entry does not match
// the first password.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Password asks for a masked password with no validation. Used where an
// empty password is legal, such as mounts to unauthenticated servers.
func Password(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	result, err := p.Run()
	return result, wrap(err)
}

// PasswordWithValidation asks for a masked password of at least minLength
// characters, re-prompting until one is given.
func PasswordWithValidation(label string, minLength int) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < minLength {
				return fmt.Errorf("password must be at least %d characters", minLength)
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrap(err)
}

// PasswordWithConfirmation asks for a password twice and returns
// ErrPasswordMismatch when the entries differ.
func PasswordWithConfirmation(label, confirmLabel string, minLength int) (string, error) {
	password, err := PasswordWithValidation(label, minLength)
	if err != nil {
		return "", err
	}

	confirm, err := Password(confirmLabel)
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", ErrPasswordMismatch
	}
	return password, nil
}

// NewPassword is PasswordWithConfirmation with the standard labels and the
// account minimum length.
func NewPassword() (string, error) {
	return PasswordWithConfirmation("Password", "Confirm password", 8)
}
