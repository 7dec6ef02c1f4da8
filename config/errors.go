package config

import (
	"errors"
	"strings"
)

// Kinds of configuration failure. Every error returned by Load is a
// *ConfigurationError that unwraps to exactly one of these.
var (
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrFileNotFound       = errors.New("file not found")
	ErrRead               = errors.New("cannot read file")
	ErrParse              = errors.New("parse error")
	ErrMissingField       = errors.New("missing required configuration")
	ErrPairsType          = errors.New("must be a list")
	ErrPairsEmpty         = errors.New("cannot be empty")
	ErrInvalidValue       = errors.New("invalid value")
	ErrUnknownTable       = errors.New("unknown table")
)

// ConfigurationError reports a configuration problem together with the
// dotted path (or file path) it concerns.
type ConfigurationError struct {
	Kind   error
	Path   string
	Detail string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path, detail string) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Path: path, Detail: detail}
}
