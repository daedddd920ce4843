package layout

import (
	"errors"
	"fmt"
)

// ErrLayoutMismatch is matched by every MismatchError.
var ErrLayoutMismatch = errors.New("layout mismatch")

// MismatchError is returned when a buffer cannot hold the record it is
// supposed to contain. It is never retryable.
type MismatchError struct {
	Layout string
	Want   int
	Got    int
	Err    error
}

func (e *MismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: need %d bytes, got %d: %v", e.Layout, e.Want, e.Got, e.Err)
	}
	return fmt.Sprintf("%s: need %d bytes, got %d", e.Layout, e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrLayoutMismatch
}
