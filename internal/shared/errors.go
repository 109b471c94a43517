package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrRebuildInProgress indicates a fact rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
	// ErrSourceUnavailable indicates a source feed could not be read.
	ErrSourceUnavailable = errors.New("source data unavailable")
)
