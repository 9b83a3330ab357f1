package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)
	nameRegex     = regexp.MustCompile(`^[A-Za-z]+ [A-Za-z]+$|^[A-Za-z]+$`)
	surnameRegex  = regexp.MustCompile(`^[A-Za-z]+[ -][A-Za-z]+$|^[A-Za-z]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit, in bytes
	maxEmailLength    = 254
	maxBioLength      = 500
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("Invalid format of the username")
	}
	return nil
}

// ValidateName accepts one or two alphabetic words separated by a single space.
func ValidateName(name string) error {
	if !nameRegex.MatchString(strings.TrimSpace(name)) {
		return fmt.Errorf("Invalid format of the name")
	}
	return nil
}

// ValidateSurname accepts one or two alphabetic words joined by a space or a hyphen.
func ValidateSurname(surname string) error {
	if !surnameRegex.MatchString(strings.TrimSpace(surname)) {
		return fmt.Errorf("Invalid format of the surname")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("Password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("Password must not exceed %d bytes", maxPasswordLength)
	}

	for _, r := range password {
		if unicode.IsUpper(r) {
			return nil
		}
	}
	return fmt.Errorf("Password must contain at least one uppercase letter")
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("Enter a valid email address.")
	}
	return nil
}

// ValidateBio limits the optional profile blurb.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > maxBioLength {
		return fmt.Errorf("Ensure this field has no more than %d characters.", maxBioLength)
	}
	return nil
}
