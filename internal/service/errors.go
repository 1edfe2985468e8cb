package service

import (
	"errors"
	"fmt"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

// ValidationError means the caller's input was malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ServiceUnavailableError means a dependency was not configured or failed to
// initialize at startup.
type ServiceUnavailableError struct {
	Service string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s is not available", e.Service)
}

// GenerationError wraps a request-time failure of the completion provider.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ExportError is returned when nothing could be exported. Result carries the
// per-story failures.
type ExportError struct {
	Message string
	Err     error
	Result  *model.ExportResult
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed read from the batch store.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by read-back and tracker lookups for unknown ids.
var ErrNotFound = errors.New("not found")
