// Package validation provides field rules for blog entities and forms.
// Required text fields are whitespace-trimmed and slugs are ASCII.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxGroupTitleLength is the maximum length of a group title, in characters.
	MaxGroupTitleLength = 200
	// MaxSlugLength is the maximum length of a group slug.
	MaxSlugLength = 50
	// MaxUsernameLength is the maximum length of a username.
	MaxUsernameLength = 150
	// MinPasswordLength is the minimum length of a local account password.
	MinPasswordLength = 8

	// MsgRequired is the message used for missing required values.
	MsgRequired = "This field is required."
	// MsgInvalidChoice is the message used when a referenced group does not exist.
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// isAlpha returns true if the byte is an ASCII letter.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAlphaNum returns true if the byte is an ASCII letter or digit.
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isNum(b)
}

// ValidateRequired rejects values that are empty after trimming whitespace.
func ValidateRequired(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s", MsgRequired)
	}
	return nil
}

// ValidatePostText validates the body of a post.
func ValidatePostText(text string) error {
	return ValidateRequired(text)
}

// ValidateSlug validates a group slug: ASCII letters, numbers, underscores or hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%s", MsgRequired)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug must be at most %d characters", MaxSlugLength)
	}
	for _, b := range []byte(slug) {
		if !isAlphaNum(b) && b != '-' && b != '_' {
			return fmt.Errorf("slug can only contain letters, numbers, underscores or hyphens")
		}
	}
	return nil
}

// ValidateGroupTitle validates a group title.
func ValidateGroupTitle(title string) error {
	if err := ValidateRequired(title); err != nil {
		return err
	}
	if utf8.RuneCountInString(title) > MaxGroupTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxGroupTitleLength)
	}
	return nil
}

// ValidateUsername validates a username: letters, digits and @/./+/-/_ only.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%s", MsgRequired)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if r < utf8.RuneSelf {
			b := byte(r)
			if isAlphaNum(b) || strings.IndexByte("@.+-_", b) >= 0 {
				continue
			}
			return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
		}
		// non-ASCII letters and digits are allowed
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
		}
	}
	return nil
}

// ValidatePassword enforces the minimum length of local account passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%s", MsgRequired)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must contain at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateEmail does a shape check of an optional email address.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	local, host, ok := strings.Cut(email, "@")
	if !ok || local == "" || host == "" || strings.Contains(host, "@") || !strings.Contains(host, ".") {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}
