// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors. Callers wrap them with fmt.Errorf("...: %w") and test with errors.Is.
var (
	// Capture source missing, unreadable or interface inaccessible. Fatal before any export.
	ErrCaptureUnavailable = errors.New("pcapreport: capture unavailable")

	// Sink specific I/O or serialization failure. Fatal for that sink only.
	ErrExportWrite = errors.New("pcapreport: export write failed")

	// Sink lifecycle misuse (write before open, finalize twice).
	ErrSinkState = errors.New("pcapreport: invalid sink state")

	// Sink registry lookup failures.
	ErrSinkNotFound = errors.New("pcapreport: sink not found")

	// Configuration errors
	ErrConfigInvalid = errors.New("pcapreport: invalid configuration")
)
