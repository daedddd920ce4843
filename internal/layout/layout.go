// internal/layout/layout.go
package layout

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// AnchorPrefix is the size of the account discriminator Anchor programs
// write in front of every account payload.
const AnchorPrefix = 8

// Layout describes one fixed-size on-chain record.
//
// Prefix bytes are skipped before decoding, Span is the payload size the
// decoder needs, and AccountSize is the full on-chain account length used
// by the dataSize discovery filter. AccountSize may be larger than
// Prefix+Span when the record carries trailing bytes nobody reads.
type Layout struct {
	Name        string
	Prefix      int
	Span        int
	AccountSize int
}

// MinLen is the smallest buffer Decode accepts.
func (l Layout) MinLen() int {
	return l.Prefix + l.Span
}

// Decode interprets data as the record described by l and stores it in v,
// which must be a pointer to a struct whose exported fields follow the
// on-chain field order.
func Decode(l Layout, data []byte, v interface{}) error {
	if len(data) < l.MinLen() {
		return &MismatchError{Layout: l.Name, Want: l.MinLen(), Got: len(data)}
	}

	dec := bin.NewBorshDecoder(data[l.Prefix : l.Prefix+l.Span])
	if err := dec.Decode(v); err != nil {
		return &MismatchError{Layout: l.Name, Want: l.MinLen(), Got: len(data), Err: err}
	}
	if dec.Remaining() != 0 {
		return &MismatchError{
			Layout: l.Name,
			Want:   l.MinLen(),
			Got:    len(data),
			Err:    fmt.Errorf("struct consumed %d of %d bytes", l.Span-dec.Remaining(), l.Span),
		}
	}
	return nil
}

// Encode serialises v with the same field rules Decode uses.
func Encode(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode for argument structs made only of fixed-width fields,
// where encoding cannot fail.
func MustEncode(v interface{}) []byte {
	out, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return out
}
