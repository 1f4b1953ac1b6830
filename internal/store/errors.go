package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/insight/internal/ir"
)

var (
	// ErrNotFound is returned when a dataset id is not in the catalog.
	ErrNotFound = errors.New("dataset not found")

	// ErrDuplicate is returned when adding an id that is already in the catalog.
	ErrDuplicate = errors.New("dataset already exists")

	// ErrInvalidID is returned for empty, whitespace-only or underscored ids.
	ErrInvalidID = errors.New("invalid dataset id")
)

// KindMismatchError reports a load that asked for a different kind than the
// dataset was stored with.
type KindMismatchError struct {
	ID        string
	Stored    ir.Kind
	Requested ir.Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("dataset %q has kind %s, query requires %s", e.ID, e.Stored, e.Requested)
}

// IsKindMismatch reports whether err is a KindMismatchError.
func IsKindMismatch(err error) bool {
	var km *KindMismatchError
	return errors.As(err, &km)
}

// ValidateID checks that id can name a dataset.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: id is empty", ErrInvalidID)
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: id is whitespace only", ErrInvalidID)
	case strings.Contains(id, "_"):
		return fmt.Errorf("%w: id %q contains an underscore", ErrInvalidID, id)
	}
	return nil
}
