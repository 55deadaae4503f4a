package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is recorded for a line that does not contain a
	// Modrinth project URL.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatchingVersion means the catalog returned no version for the
	// requested game version and loader.
	ErrNoMatchingVersion = errors.New("no matching version")

	// ErrNoPrimaryFile means the selected version has no downloadable file.
	ErrNoPrimaryFile = errors.New("no primary file")

	// ErrArchiveEmpty is returned when none of the resolved files could be
	// fetched, so there is nothing to archive.
	ErrArchiveEmpty = errors.New("archive is empty")

	// ErrDependencyMissing is returned when the configured archive format
	// has no writer available. It is checked before any work starts.
	ErrDependencyMissing = errors.New("archive writer unavailable")

	// ErrEmptyInput is returned when a batch contains no lines.
	ErrEmptyInput = errors.New("no input lines")

	// ErrInvalidCriteria is returned by Criteria.Validate.
	ErrInvalidCriteria = errors.New("invalid criteria")

	// ErrHashMismatch is returned when downloaded bytes do not match the
	// digest published by the catalog.
	ErrHashMismatch = errors.New("hash mismatch")
)

// NetworkError is a failed catalog query or file download.
//
// Status holds the HTTP status code for non-2xx responses and is zero for
// transport failures and undecodable bodies, in which case Message
// carries the underlying error text.
type NetworkError struct {
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps err as a NetworkError, keeping an existing
// NetworkError found in its chain.
func NewNetworkError(err error) *NetworkError {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne
	}
	return &NetworkError{Message: err.Error(), Err: err}
}
