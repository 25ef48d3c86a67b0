// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"strings"
)

var (
	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameTooLong = errors.New("username can't be longer than 150 characters")
	ErrUsernameInvalid = errors.New("username may only contain letters, digits and @/./+/-/_ characters")
)

const maxUsernameLength = 150

func validUsernameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}

	return strings.ContainsRune("@.+-_", r)
}

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if len(u) > maxUsernameLength {
		return ErrUsernameTooLong
	}

	for _, r := range u {
		if !validUsernameChar(r) {
			return ErrUsernameInvalid
		}
	}

	return nil
}
