package services

import (
	"context"
	"errors"
	"fmt"

	"studywai-backend/internal/metrics"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// StorageError reports a failed durable write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// UpstreamError reports a failed call to the text generator or a remote site.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream: %v", e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// storageError classifies a repository write failure. Cancellation passes through.
func storageError(m *metrics.Metrics, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	m.StorageError(op)
	return &StorageError{Op: op, Err: err}
}
