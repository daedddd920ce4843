// internal/blockchain/solbc/errors.go
package solbc

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalIO is matched by every IOError. Callers decide whether to retry.
	ErrExternalIO = errors.New("external io failure")

	// ErrAccountNotFound is returned by GetAccount when the address holds no account.
	ErrAccountNotFound = errors.New("account not found")
)

// IOError wraps a failure reported by the RPC node without interpreting it.
type IOError struct {
	Err    error
	Method string
}

func (e *IOError) Error() string {
	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

// Unwrap returns the original transport error.
func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrExternalIO
}

func newIOError(method string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Err: err, Method: method}
}
