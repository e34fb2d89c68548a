// Package upstream describes failures of third-party providers (LLM, speech,
// video rooms, spreadsheets, email) in a provider-neutral way.
package upstream

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is matched by every *ConfigError.
var ErrNotConfigured = errors.New("provider not configured")

// Error is a failed call to an external provider.
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(" failed")
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ConfigError reports a credential or identifier missing at first use.
type ConfigError struct {
	Provider string
	Missing  []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not configured: missing %s", e.Provider, strings.Join(e.Missing, ", "))
}

func (e *ConfigError) Is(target error) bool { return target == ErrNotConfigured }

// NotConfigured builds a *ConfigError for the provider.
func NotConfigured(provider string, missing ...string) error {
	return &ConfigError{Provider: provider, Missing: missing}
}

// Wrap turns err into an *Error unless it already is one (or a *ConfigError).
func Wrap(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var upErr *Error
	if errors.As(err, &upErr) {
		return err
	}
	if errors.Is(err, ErrNotConfigured) {
		return err
	}
	return &Error{Provider: provider, Op: op, Err: err}
}

// Provider returns the provider named by err, if any.
func Provider(err error) string {
	var upErr *Error
	if errors.As(err, &upErr) {
		return upErr.Provider
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Provider
	}
	return ""
}

// Truncate shortens a provider response body for error messages.
func Truncate(body []byte, max int) string {
	s := strings.TrimSpace(string(body))
	if max > 0 && len(s) > max {
		return s[:max] + "..."
	}
	return s
}
