package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "dictionary", ID: "places.db"},
			wantMsg:  "dictionary not found: places.db",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "entry"},
			wantMsg:  "entry not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	// Test with underlying error separately
	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "document", ID: "doc.xml", Err: underlyingErr}
		if got := err.Error(); got != "document not found: doc.xml" {
			t.Errorf("Error() = %q, want %q", got, "document not found: doc.xml")
		}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &ValidationError{Field: "name", Message: "must not be empty"},
			wantMsg: "validation failed for name: must not be empty",
		},
		{
			name:    "without field",
			err:     &ValidationError{Message: "span inverted"},
			wantMsg: "validation failed: span inverted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ParseError
		wantMsg string
	}{
		{
			name:    "path and offset",
			err:     &ParseError{Format: "markup", Path: "doc.html", Offset: 42, Message: "mismatched closing tag"},
			wantMsg: "failed to parse markup at doc.html offset 42: mismatched closing tag",
		},
		{
			name:    "path only",
			err:     &ParseError{Format: "dictionary", Path: "names.dsl", Offset: -1, Message: "unexpected token"},
			wantMsg: "failed to parse dictionary at names.dsl: unexpected token",
		},
		{
			name:    "offset only",
			err:     &ParseError{Format: "markup", Offset: 7, Message: "stray closing tag"},
			wantMsg: "failed to parse markup at offset 7: stray closing tag",
		},
		{
			name:    "bare",
			err:     &ParseError{Format: "XML", Offset: -1, Message: "truncated"},
			wantMsg: "failed to parse XML: truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ParseError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestIOError(t *testing.T) {
	underlying := fmt.Errorf("permission denied")

	err := &IOError{Operation: "open", Path: "dict.db", Err: underlying}
	if got := err.Error(); got != "failed to open dict.db: permission denied" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, underlying) {
		t.Error("IOError should unwrap to the underlying error")
	}

	noPath := &IOError{Operation: "read", Err: underlying}
	if got := noPath.Error(); got != "failed to read: permission denied" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUnsupportedError(t *testing.T) {
	err := &UnsupportedError{Feature: "dictionary format .csv", Reason: "use plain text, DSL or SQLite"}
	if got := err.Error(); got != "unsupported dictionary format .csv: use plain text, DSL or SQLite" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}

	bare := &UnsupportedError{Feature: "streaming input"}
	if got := bare.Error(); got != "unsupported streaming input" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConstructors(t *testing.T) {
	if err := NewNotFound("entry", "Boston"); !errors.Is(err, ErrNotFound) {
		t.Error("NewNotFound should unwrap to ErrNotFound")
	}
	if err := NewValidation("span", "end before start"); !errors.Is(err, ErrInvalidInput) {
		t.Error("NewValidation should unwrap to ErrInvalidInput")
	}
	if err := NewParse("markup", "doc.html", "unclosed tag"); err.Offset != -1 {
		t.Errorf("NewParse Offset = %d, want -1", err.Offset)
	}
	if err := NewParseAt("markup", 13, "stray closing tag"); err.Offset != 13 {
		t.Errorf("NewParseAt Offset = %d, want 13", err.Offset)
	}
	if err := NewUnsupported("format", "reason"); !errors.Is(err, ErrUnsupported) {
		t.Error("NewUnsupported should unwrap to ErrUnsupported")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := fmt.Errorf("boom")
	wrapped := Wrap(base, "loading dictionary")
	if wrapped.Error() != "loading dictionary: boom" {
		t.Errorf("Wrap message = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should unwrap to the base error")
	}

	formatted := Wrapf(base, "scanning %s", "doc.html")
	if formatted.Error() != "scanning doc.html: boom" {
		t.Errorf("Wrapf message = %q", formatted.Error())
	}
}
