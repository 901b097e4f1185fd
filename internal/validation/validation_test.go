package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/bcnelson/yatube/internal/domain"
)

func TestValidatePostText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"simple text", "Hello, world", false},
		{"cyrillic text", "Тестовый пост", false},
		{"multiline text", "line one\nline two", false},
		{"empty", "", true},
		{"spaces only", "   ", true},
		{"newlines only", "\n\n\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePostText(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"lowercase", "cats", false},
		{"with hyphen", "test-slug", false},
		{"with underscore", "test-slug_without_posts", false},
		{"with digits", "group42", false},
		{"empty", "", true},
		{"contains space", "test slug", true},
		{"contains slash", "test/slug", true},
		{"contains dot", "test.slug", true},
		{"non-ascii", "группа", true},
		{"too long", strings.Repeat("a", MaxSlugLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGroupTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"simple", "Test group", false},
		{"max length", strings.Repeat("я", MaxGroupTitleLength), false},
		{"too long", strings.Repeat("я", MaxGroupTitleLength+1), true},
		{"blank", " ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGroupTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"ascii", "leo", false},
		{"cyrillic", "Мокрушин", false},
		{"with punctuation", "first.last+blog@example-site_1", false},
		{"empty", "", true},
		{"contains space", "two words", true},
		{"contains slash", "a/b", true},
		{"too long", strings.Repeat("u", MaxUsernameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePasswordAndEmail(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("long enough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEmail(""); err != nil {
		t.Errorf("empty email should be allowed, got %v", err)
	}
	if err := ValidateEmail("user@example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"user", "@example.com", "user@", "user@localhost", "a@b@c.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) expected error", bad)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.HasErrors() || errs.Err() != nil {
		t.Fatal("empty collection should not report errors")
	}

	errs.Add("text", "", MsgRequired)
	errs.AddCause("group", "99", MsgInvalidChoice, domain.ErrNotFound)

	err := errs.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Error("expected errors.Is(err, ErrInvalidInput)")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected the group cause to be visible through errors.Is")
	}

	var ve ValidationErrors
	if !errors.As(err, &ve) || len(ve) != 2 {
		t.Fatalf("expected errors.As to recover 2 errors, got %v", ve)
	}

	msgs := errs.Messages()
	if got := msgs["text"]; len(got) != 1 || got[0] != MsgRequired {
		t.Errorf("unexpected text messages: %v", got)
	}
	if got := errs.Error(); got != "text: "+MsgRequired+" (and 1 more errors)" {
		t.Errorf("unexpected Error(): %q", got)
	}
}
