package mtl

import (
	"errors"
	"fmt"
)

// ErrUnhandledFilter is returned by a FilterHandler that does not recognize a filter name.
var ErrUnhandledFilter = errors.New("unhandled filter")

// TemplateSyntaxError reports a template string that does not match the grammar.
type TemplateSyntaxError struct {
	Message  string
	Text     string
	Position int
}

func (e *TemplateSyntaxError) Error() string {
	if e.Text != "" && e.Position >= 0 {
		return fmt.Sprintf("template syntax error at position %d in %q: %s", e.Position, e.Text, e.Message)
	}
	if e.Text != "" {
		return fmt.Sprintf("template syntax error in %q: %s", e.Text, e.Message)
	}
	return fmt.Sprintf("template syntax error: %s", e.Message)
}

// NewTemplateSyntaxError creates a new template syntax error with position information
func NewTemplateSyntaxError(message, text string, position int) error {
	return &TemplateSyntaxError{
		Message:  message,
		Text:     text,
		Position: position,
	}
}

// UnknownFieldError is returned when no resolver in the chain recognizes a field.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown template field: %s", e.Field)
}

// SyntaxError represents semantic misuse of the template language detected while
// rendering: unbound variables, missing filter arguments, non-numeric comparisons
// and multi-valued expansions where a single value is required.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Message
}

// NewSyntaxError creates a new SyntaxError with a formatted message
func NewSyntaxError(format string, args ...interface{}) error {
	return &SyntaxError{Message: fmt.Sprintf(format, args...)}
}

// IsTemplateSyntaxError checks if an error is a template syntax error
func IsTemplateSyntaxError(err error) bool {
	var target *TemplateSyntaxError
	return errors.As(err, &target)
}

// IsUnknownFieldError checks if an error is an unknown field error
func IsUnknownFieldError(err error) bool {
	var target *UnknownFieldError
	return errors.As(err, &target)
}

// IsSyntaxError checks if an error is a render-time syntax error
func IsSyntaxError(err error) bool {
	var target *SyntaxError
	return errors.As(err, &target)
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}
