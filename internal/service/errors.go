package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned for blank save input; nothing is written
	ErrEmptyURL = errors.New("url is empty")
	// ErrInvalidURL is returned for input that is not an absolute http(s) URL
	ErrInvalidURL = errors.New("url is not a valid http or https URL")
	// ErrDuplicateURL is returned when the user already has a non-deleted item for the URL
	ErrDuplicateURL = errors.New("url already saved")
	// ErrNotFound is returned for unknown, foreign or deleted items
	ErrNotFound = errors.New("not found")
	// ErrWorkerPoolStopped is returned when background finalization cannot be scheduled
	ErrWorkerPoolStopped = errors.New("worker pool is not running")
	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// StoreError reports a failed store read or write
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FeedFetchError reports a failed feed ingestion; the cached snapshot is untouched
type FeedFetchError struct {
	Source string
	Err    error
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("fetching feed %q: %v", e.Source, e.Err)
}

func (e *FeedFetchError) Unwrap() error {
	return e.Err
}
