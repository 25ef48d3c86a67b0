package validators

import (
	"errors"
	"net/mail"
)

var ErrEmailInvalid = errors.New("invalid email address provided")

// EmailValidator accepts the empty string because email is optional
// at registration
func EmailValidator(e string) error {
	if e == "" {
		return nil
	}

	if _, err := mail.ParseAddress(e); err != nil {
		return ErrEmailInvalid
	}

	return nil
}
