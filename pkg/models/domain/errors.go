package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPolicy        = errors.New("invalid compliance policy")
	ErrDimensionUnavailable = errors.New("cost dimension unavailable")
)

// TagLookupError is returned by scanners when the tags of a single resource could not be read
type TagLookupError struct {
	Type       ResourceType
	ResourceID string
	Err        error
}

func (e *TagLookupError) Error() string {
	return fmt.Sprintf("failed to get tags for %s %s: %v", e.Type, e.ResourceID, e.Err)
}

func (e *TagLookupError) Unwrap() error {
	return e.Err
}

// EmptyingError means a bucket could not be fully emptied and was left in place
type EmptyingError struct {
	Bucket    string
	Submitted int // objects removed before the failure
	Err       error
}

func (e *EmptyingError) Error() string {
	return fmt.Sprintf("failed to empty bucket %s after %d objects: %v", e.Bucket, e.Submitted, e.Err)
}

func (e *EmptyingError) Unwrap() error {
	return e.Err
}

// DeletionError wraps a failed deletion request for one resource
type DeletionError struct {
	Type       ResourceType
	ResourceID string
	Err        error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("failed to delete %s %s: %v", e.Type, e.ResourceID, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}
