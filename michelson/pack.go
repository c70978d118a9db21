// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"errors"
	"fmt"

	"github.com/ava-labs/michelsonvm/micheline"
)

// packPrefix tags packed Michelson data
const packPrefix byte = 0x05

var errNotPacked = errors.New("bytes do not start with the pack prefix")

// packable reports whether values of [t] can be serialized
func packable(t Type) bool {
	switch t.Code {
	case TBigMap, TOperation, TTicket, TNever:
		return false
	case TLambda, TContract:
		return true
	}
	for _, a := range t.Args {
		if !packable(a) {
			return false
		}
	}
	return true
}

// Pack serializes [v] into its binary packed form
func Pack(v Item) ([]byte, error) {
	if t := v.Type(); !packable(t) {
		return nil, &TypeMismatchError{Expected: "packable type", Found: t.String()}
	}
	return packItem(v)
}

func packItem(v Item) ([]byte, error) {
	body, err := micheline.Encode(IntoOptimizedData(v))
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", v.Type(), err)
	}
	return append([]byte{packPrefix}, body...), nil
}

// Unpack reads packed bytes as a value of type [t]
func Unpack(b []byte, t Type) (Item, error) {
	if !packable(t) {
		return nil, &TypeMismatchError{Expected: "packable type", Found: t.String()}
	}
	return unpackAs(b, t)
}

func unpackAs(b []byte, t Type) (Item, error) {
	if len(b) == 0 || b[0] != packPrefix {
		return nil, errNotPacked
	}
	n, err := micheline.Decode(b[1:])
	if err != nil {
		return nil, err
	}
	return FromData(n, t)
}

func pack(v Item) (Item, error) {
	b, err := Pack(v)
	if err != nil {
		return nil, err
	}
	return Bytes(b), nil
}

// unpack yields None for bytes that do not hold a value of type [t]
func unpack(t Type, v Item) (Item, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, mismatch("bytes", v)
	}
	if !packable(t) {
		return nil, &TypeMismatchError{Expected: "packable type", Found: t.String()}
	}
	item, err := unpackAs(b, t)
	if err != nil {
		return NewNone(t), nil
	}
	return NewSome(item), nil
}
