package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals an invalid or incomplete run configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrVectorSpaceModel signals an unreadable or corrupt vector space model.
	ErrVectorSpaceModel = errors.New("vector space model error")
	// ErrPatternExtraction signals a malformed tagger output. A missing pattern is not an error.
	ErrPatternExtraction = errors.New("pattern extraction error")
	// ErrUnknownContext signals a context name other than before, between or after.
	ErrUnknownContext = errors.New("unknown context")
)

// ConfigurationError names the parameter or invariant that failed.
type ConfigurationError struct {
	Key    string
	Line   int // 1-based source line, 0 when not tied to a line
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d): %s", ErrConfiguration.Error(), e.Key, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration.Error(), e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError creates a ConfigurationError for key.
func NewConfigurationError(key, format string, args ...any) error {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// NewLineConfigurationError creates a ConfigurationError tied to a source line.
func NewLineConfigurationError(key string, line int, format string, args ...any) error {
	return &ConfigurationError{Key: key, Line: line, Reason: fmt.Sprintf(format, args...)}
}

// VectorSpaceModelError wraps a failure to decode or persist a vector space model.
type VectorSpaceModelError struct {
	Op  string
	Err error
}

func (e *VectorSpaceModelError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrVectorSpaceModel.Error(), e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *VectorSpaceModelError) Unwrap() []error { return []error{ErrVectorSpaceModel, e.Err} }
