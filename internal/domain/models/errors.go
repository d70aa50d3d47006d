package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned before any external call when the request is malformed.
	ErrInvalidRequest = errors.New("invalid research request")
	// ErrReportNotFound is returned by stores when no report matches the owner and id.
	ErrReportNotFound = errors.New("report not found")
)

// ValidationError describes which request field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRequest, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

// StoreError is a persistence failure that happened after the report was computed.
// ReportID is set when the report is still available for a persistence retry.
type StoreError struct {
	Op       string
	ReportID string
	Err      error
}

func (e *StoreError) Error() string {
	if e.ReportID != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.ReportID, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err carries a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
