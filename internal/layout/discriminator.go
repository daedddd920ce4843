package layout

import (
	bin "github.com/gagliardetto/binary"
)

// Discriminator returns the 8-byte Anchor instruction selector for a
// snake_case instruction name: sha256("global:<name>")[:8].
func Discriminator(name string) [8]byte {
	var out [8]byte
	copy(out[:], bin.Sighash(bin.SIGHASH_GLOBAL_NAMESPACE, name))
	return out
}
