// internal/dex/batch/batch.go
package batch

import (
	"github.com/gagliardetto/solana-go"
)

// Phase orders instructions inside a batch. Phases always flatten in
// declaration order so that an account is created before anything reads it
// and temporary accounts are closed after the last use.
type Phase int

const (
	PhaseCreate Phase = iota
	PhaseWrap
	PhaseCore
	PhaseUnwrap
	PhaseCleanup

	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhaseWrap:
		return "wrap"
	case PhaseCore:
		return "core"
	case PhaseUnwrap:
		return "unwrap"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

type createEntry struct {
	address solana.PublicKey
	ix      solana.Instruction
}

// Batch collects the instructions of one user-facing action.
// The zero value is not usable; call New.
type Batch struct {
	creates []createEntry
	created map[solana.PublicKey]struct{}
	phases  [numPhases][]solana.Instruction
}

// New returns an empty batch.
func New() *Batch {
	return &Batch{created: make(map[solana.PublicKey]struct{})}
}

// AddCreate appends an account-creating instruction for address. A second
// create for the same address is dropped and AddCreate reports false.
func (b *Batch) AddCreate(address solana.PublicKey, ix solana.Instruction) bool {
	if ix == nil {
		return false
	}
	if _, ok := b.created[address]; ok {
		return false
	}
	b.created[address] = struct{}{}
	b.creates = append(b.creates, createEntry{address: address, ix: ix})
	return true
}

// Add appends instructions to phase. Nil instructions are skipped, so a
// builder that elides a no-op can be passed straight through.
// Creates should go through AddCreate to be de-duplicated.
func (b *Batch) Add(phase Phase, ixs ...solana.Instruction) {
	if phase == PhaseCreate {
		for _, ix := range ixs {
			if ix != nil {
				b.creates = append(b.creates, createEntry{ix: ix})
			}
		}
		return
	}
	for _, ix := range ixs {
		if ix != nil {
			b.phases[phase] = append(b.phases[phase], ix)
		}
	}
}

// Merge appends every phase of other to the matching phase of b, keeping
// create de-duplication across both.
func (b *Batch) Merge(other *Batch) {
	if other == nil {
		return
	}
	for _, c := range other.creates {
		if c.address.IsZero() {
			b.creates = append(b.creates, c)
			continue
		}
		b.AddCreate(c.address, c.ix)
	}
	for p := PhaseWrap; p < numPhases; p++ {
		b.phases[p] = append(b.phases[p], other.phases[p]...)
	}
}

// Creates reports whether the batch creates address.
func (b *Batch) Creates(address solana.PublicKey) bool {
	_, ok := b.created[address]
	return ok
}

// CreatedAddresses lists created addresses in insertion order.
func (b *Batch) CreatedAddresses() []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(b.creates))
	for _, c := range b.creates {
		if !c.address.IsZero() {
			out = append(out, c.address)
		}
	}
	return out
}

// Phase returns the instructions of one phase.
func (b *Batch) Phase(p Phase) []solana.Instruction {
	if p == PhaseCreate {
		out := make([]solana.Instruction, len(b.creates))
		for i, c := range b.creates {
			out[i] = c.ix
		}
		return out
	}
	if p < 0 || p >= numPhases {
		return nil
	}
	return b.phases[p]
}

// Instructions flattens the batch: creates, wraps, core, unwraps, cleanup.
func (b *Batch) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, 0, b.Len())
	for p := PhaseCreate; p < numPhases; p++ {
		out = append(out, b.Phase(p)...)
	}
	return out
}

// Len is the total instruction count.
func (b *Batch) Len() int {
	n := len(b.creates)
	for p := PhaseWrap; p < numPhases; p++ {
		n += len(b.phases[p])
	}
	return n
}

// Empty reports whether the batch holds no instructions.
func (b *Batch) Empty() bool {
	return b.Len() == 0
}
