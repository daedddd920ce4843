// internal/dex/saber/errors.go
package saber

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrMissingAssociation is matched by MissingAssociationError.
	ErrMissingAssociation = errors.New("missing pool association")

	// ErrInvalidSide is returned for a side other than A or B.
	ErrInvalidSide = errors.New("invalid pool side")
)

// MissingAssociationError reports an optional wrap or farm link that was
// needed but never populated, or a miner read against the wrong farm.
type MissingAssociationError struct {
	Pool  solana.PublicKey
	Kind  string
	Given solana.PublicKey
}

func (e *MissingAssociationError) Error() string {
	if !e.Given.IsZero() {
		return fmt.Sprintf("%s %s: association mismatch with %s", e.Kind, e.Pool, e.Given)
	}
	return fmt.Sprintf("pool %s has no %s", e.Pool, e.Kind)
}

func (e *MissingAssociationError) Is(target error) bool {
	return target == ErrMissingAssociation
}
