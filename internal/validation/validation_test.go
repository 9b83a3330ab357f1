package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{"Exactly 30 Trimmed", "   " + strings.Repeat("a", 30) + "  ", "Post must contain at least 30 characters"},
		{"31 Characters", strings.Repeat("a", 31), ""},
		{"Max Length", strings.Repeat("b", 5000), ""},
		{"Too Long", strings.Repeat("b", 5001), "Ensure this field has no more than 5000 characters."},
		{"Blank", "    ", "This field may not be blank."},
		{"Multibyte Counted As Runes", strings.Repeat("ż", 31), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidatePostText(tt.text)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.text), got)
		})
	}
}

func TestValidateCommentText(t *testing.T) {
	t.Parallel()

	got, err := ValidateCommentText("  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = ValidateCommentText("")
	assert.Error(t, err)

	_, err = ValidateCommentText(strings.Repeat("x", 5001))
	assert.Error(t, err)

	_, err = ValidateCommentText(strings.Repeat("x", 5000))
	assert.NoError(t, err)
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Testing321", false},
		{"Exactly Min Length", "Abcdefgh", false},
		{"Too Short", "Abcdefg", true},
		{"No Upper", "testing321", true},
		{"Too Long", "A" + strings.Repeat("b", 72), true},
		{"Unicode Upper", "Ångstrom1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateName("Testing"))
	assert.NoError(t, ValidateName("Mary Ann"))
	assert.Error(t, ValidateName("Mary  Ann"))
	assert.Error(t, ValidateName("R2D2"))

	assert.NoError(t, ValidateSurname("Smith"))
	assert.NoError(t, ValidateSurname("Smith-Jones"))
	assert.NoError(t, ValidateSurname("van Dyke"))
	assert.Error(t, ValidateSurname("Smith--Jones"))
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateUsername("jan.kowalski_1"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.Error(t, ValidateUsername("white space"))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail("user@localhost"))
	assert.Error(t, ValidateEmail("not-an-email"))
}
