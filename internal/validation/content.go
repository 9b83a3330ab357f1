// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"agora/internal/models"
)

var (
	errBlank   = fmt.Errorf("This field may not be blank.")
	errTooLong = fmt.Errorf("Ensure this field has no more than %d characters.", models.MaxTextLength)
)

// ValidatePostText trims surrounding whitespace and checks the result is
// long enough to publish. Lengths are counted in code points.
func ValidatePostText(text string) (string, error) {
	text, err := validateText(text)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(text) <= models.MinPostTextLength {
		return "", fmt.Errorf("Post must contain at least %d characters", models.MinPostTextLength)
	}
	return text, nil
}

// ValidateCommentText checks the text of a comment or a reply.
func ValidateCommentText(text string) (string, error) {
	return validateText(text)
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errBlank
	}
	if utf8.RuneCountInString(text) > models.MaxTextLength {
		return "", errTooLong
	}
	return text, nil
}
