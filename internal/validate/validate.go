// SPDX-License-Identifier: MIT

// Package validate collects every problem of a merged configuration so a
// single error reports them all.
package validate

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/sd2xmltv/internal/netutil"
)

// Error is one rejected configuration field.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError carries all rejected fields of one check run.
type ValidationError struct {
	errors []Error
}

// Errors returns the rejected fields in the order they were found.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.errors))
	for _, fe := range e.errors {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates field errors.
type Validator struct {
	errors []Error
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failed field.
func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

func (v *Validator) addf(field string, value any, format string, args ...any) {
	v.AddError(field, fmt.Sprintf(format, args...), value)
}

// IsValid reports whether no field failed so far.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns the failures recorded so far.
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err returns a ValidationError snapshot, or nil when every field passed.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return ValidationError{errors: slices.Clone(v.errors)}
}

// NotEmpty rejects empty or whitespace-only values.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "must not be empty", value)
	}
}

// OneOf rejects values outside allowed.
func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.addf(field, value, "must be one of %s, got %q", strings.Join(allowed, ", "), value)
	}
}

// Range rejects integers outside [lo, hi].
func (v *Validator) Range(field string, value, lo, hi int) {
	if value < lo || value > hi {
		v.addf(field, value, "must be between %d and %d, got %d", lo, hi, value)
	}
}

// PositiveDuration rejects zero and negative durations.
func (v *Validator) PositiveDuration(field string, d time.Duration) {
	if d <= 0 {
		v.addf(field, d, "must be a positive duration, got %s", d)
	}
}

// PositiveRate rejects zero and negative rates.
func (v *Validator) PositiveRate(field string, r float64) {
	if r <= 0 {
		v.addf(field, r, "must be positive, got %v", r)
	}
}

// HTTPURL accepts absolute http(s) URLs with a host and without embedded
// credentials or fragment.
func (v *Validator) HTTPURL(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "must not be empty", value)
		return
	}
	if _, err := netutil.ParseHTTPURL(value); err != nil {
		v.AddError(field, err.Error(), netutil.SanitizeURL(value))
	}
}

// HexDigest accepts a hex string encoding exactly size bytes.
func (v *Validator) HexDigest(field, value string, size int) {
	if len(value) != 2*size {
		v.addf(field, len(value), "must be %d hex characters, got %d", 2*size, len(value))
		return
	}
	if _, err := hex.DecodeString(value); err != nil {
		v.addf(field, nil, "not a hex string: %v", err)
	}
}

// Directory accepts an existing directory and creates a missing one.
func (v *Validator) Directory(field, path string) {
	if strings.TrimSpace(path) == "" {
		v.AddError(field, "must not be empty", path)
		return
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o750); err != nil {
			v.addf(field, path, "cannot create directory: %v", err)
		}
	case err != nil:
		v.addf(field, path, "cannot access directory: %v", err)
	case !info.IsDir():
		v.AddError(field, "is not a directory", path)
	}
}

// OutputFile accepts a file path that is about to be replaced. Its parent
// directory is created when missing; the path itself must not be a
// directory.
func (v *Validator) OutputFile(field, path string) {
	if strings.TrimSpace(path) == "" {
		v.AddError(field, "must not be empty", path)
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.AddError(field, "is a directory, expected a file", path)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		v.addf(field, path, "cannot create parent directory: %v", err)
	}
}
