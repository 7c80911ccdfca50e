package application

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for the error taxonomy
var (
	ErrNotFound         = errors.New("not found")
	ErrNetwork          = errors.New("network failure")
	ErrCancelled        = errors.New("cancelled")
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorage          = errors.New("storage failure")
)

// NetworkError is a non-2xx response or transport failure from the backend
type NetworkError struct {
	StatusCode int // 0 for transport errors
	Message    string
}

func (e *NetworkError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if e.StatusCode == 0 {
		return fmt.Sprintf("network: %s", msg)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("network: http %d: %s", e.StatusCode, msg)
}

func (e *NetworkError) Is(target error) bool {
	if target == ErrNotFound {
		return e.StatusCode == http.StatusNotFound
	}
	return target == ErrNetwork
}

// ValidationError represents a validation failure on one field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects field-keyed messages for a form step
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return strings.Join(parts, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add records err under its field when it is a *ValidationError
func (e ValidationErrors) Add(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if _, exists := e[ve.Field]; !exists {
			e[ve.Field] = ve.Message
		}
	}
}

// OrNil returns nil when no field failed
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// PermissionError is a role-gated action the current role may not perform
type PermissionError struct {
	Action string
	Object string
	Code   string // machine-readable, e.g. EXPORT_NOT_ALLOWED
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s (%s)", e.Action, e.Object, e.Code)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// StorageError is a failed read or write of persisted client state
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
