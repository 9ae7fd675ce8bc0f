package listing

import (
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

var (
	// ErrDataSourceUnavailable is returned when a repository call fails entirely.
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	// ErrNotFound is returned when the entity a listing is scoped to no longer exists.
	ErrNotFound = domain.ErrNotFound
	// ErrInvalidSortColumn is returned for a sort column outside the allow-list.
	ErrInvalidSortColumn = errors.New("invalid sort column")
	// ErrNotInitialized is returned by controller operations issued before Init or Restore.
	ErrNotInitialized = errors.New("listing not initialized")
)

// SourceError wraps a failed repository call.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrDataSourceUnavailable, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func (e *SourceError) Is(target error) bool {
	return target == ErrDataSourceUnavailable
}

// classify keeps not-found errors intact and tags everything else as unavailable.
func classify(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &SourceError{Op: op, Err: err}
}
