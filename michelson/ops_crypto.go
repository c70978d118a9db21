// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/ava-labs/avalanchego/utils/hashing"
)

func blake2b256(b []byte) []byte {
	sum := blake2b.Sum256(b)
	return sum[:]
}

func sha256Sum(b []byte) []byte { return hashing.ComputeHash256(b) }

func sha512Sum(b []byte) []byte {
	sum := sha512.Sum512(b)
	return sum[:]
}

func keccak256(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(b)
	return h.Sum(nil)
}

func sha3256(b []byte) []byte {
	sum := sha3.Sum256(b)
	return sum[:]
}

// digest lifts a hash function to an instruction over bytes
func digest(hash func([]byte) []byte) func(Item) (Item, error) {
	return func(v Item) (Item, error) {
		b, ok := v.(Bytes)
		if !ok {
			return nil, mismatch("bytes", v)
		}
		return Bytes(hash(b)), nil
	}
}

func hashKey(v Item) (Item, error) {
	k, ok := v.(Key)
	if !ok {
		return nil, mismatch("key", v)
	}
	return k.Hash(), nil
}

func execCheckSignature(s *Stack) error {
	return ternary(s, func(key, sig, msg Item) (Item, error) {
		k, ok := key.(Key)
		if !ok {
			return nil, mismatch("key", key)
		}
		signature, ok := sig.(Signature)
		if !ok {
			return nil, mismatch("signature", sig)
		}
		b, ok := msg.(Bytes)
		if !ok {
			return nil, mismatch("bytes", msg)
		}
		valid, err := k.Verify(b, signature)
		if err != nil {
			return nil, err
		}
		return Bool(valid), nil
	})
}
