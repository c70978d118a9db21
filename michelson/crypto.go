// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/ava-labs/avalanchego/utils/hashing"
)

const (
	hashLen        = 20
	checksumLen    = 4
	addressLen     = 22
	signatureLen   = 64
	chainIDLen     = 4
	maxEntrypoint  = 31
	defaultEntry   = "default"
	implicitTag    = 0x00
	originatedTag  = 0x01
	smartRollupTag = 0x03
)

// Curve identifies the signature scheme of a key
type Curve byte

const (
	Ed25519 Curve = iota
	Secp256k1
	P256
	BLS12381
)

var (
	errBadChecksum   = errors.New("invalid base58 checksum")
	errBadPrefix     = errors.New("unknown base58 prefix")
	errBadLength     = errors.New("invalid payload length")
	errBadEntrypoint = errors.New("invalid entrypoint")
)

type b58Prefix struct {
	prefix []byte
	length int
}

var (
	prefixTz1     = b58Prefix{[]byte{6, 161, 159}, hashLen}
	prefixTz2     = b58Prefix{[]byte{6, 161, 161}, hashLen}
	prefixTz3     = b58Prefix{[]byte{6, 161, 164}, hashLen}
	prefixTz4     = b58Prefix{[]byte{6, 161, 166}, hashLen}
	prefixKT1     = b58Prefix{[]byte{2, 90, 121}, hashLen}
	prefixSr1     = b58Prefix{[]byte{6, 124, 117}, hashLen}
	prefixEdpk    = b58Prefix{[]byte{13, 15, 37, 217}, 32}
	prefixSppk    = b58Prefix{[]byte{3, 254, 226, 86}, 33}
	prefixP2pk    = b58Prefix{[]byte{3, 178, 139, 127}, 33}
	prefixEdsig   = b58Prefix{[]byte{9, 245, 205, 134, 18}, signatureLen}
	prefixSpsig   = b58Prefix{[]byte{13, 115, 101, 19, 63}, signatureLen}
	prefixP2sig   = b58Prefix{[]byte{54, 240, 44, 52}, signatureLen}
	prefixSig     = b58Prefix{[]byte{4, 130, 43}, signatureLen}
	prefixChainID = b58Prefix{[]byte{87, 82, 0}, chainIDLen}
	prefixExpr    = b58Prefix{[]byte{13, 44, 64, 27}, 32}

	keyHashPrefixes = []b58Prefix{prefixTz1, prefixTz2, prefixTz3, prefixTz4}
	keyPrefixes     = []b58Prefix{prefixEdpk, prefixSppk, prefixP2pk}
)

func checksum(payload []byte) []byte {
	return hashing.ComputeHash256(hashing.ComputeHash256(payload))[:checksumLen]
}

func b58Encode(p b58Prefix, data []byte) string {
	payload := append(append([]byte{}, p.prefix...), data...)
	return base58.Encode(append(payload, checksum(payload)...))
}

// b58Decode checks the checksum of [s] and returns the payload following
// one of [prefixes] along with the index of the matched prefix.
func b58Decode(s string, prefixes ...b58Prefix) ([]byte, int, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid base58 %q: %w", s, err)
	}
	if len(raw) < checksumLen {
		return nil, 0, errBadLength
	}
	payload, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(checksum(payload), sum) {
		return nil, 0, errBadChecksum
	}
	for i, p := range prefixes {
		if bytes.HasPrefix(payload, p.prefix) && len(payload) == len(p.prefix)+p.length {
			return payload[len(p.prefix):], i, nil
		}
	}
	return nil, 0, errBadPrefix
}

// Address is an implicit, originated or rollup address with an optional
// entrypoint. Raw holds the 22 byte binary form.
type Address struct {
	Raw        [addressLen]byte
	Entrypoint string
}

// ParseAddress reads a base58 address with an optional "%entrypoint"
func ParseAddress(s string) (Address, error) {
	var addr Address
	body := s
	if i := strings.IndexByte(s, '%'); i >= 0 {
		body = s[:i]
		ep := s[i+1:]
		if len(ep) == 0 || len(ep) > maxEntrypoint || ep == defaultEntry {
			return Address{}, fmt.Errorf("%w %q", errBadEntrypoint, ep)
		}
		addr.Entrypoint = ep
	}
	hash, idx, err := b58Decode(body, prefixTz1, prefixTz2, prefixTz3, prefixTz4, prefixKT1, prefixSr1)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	switch {
	case idx < len(keyHashPrefixes):
		addr.Raw[0] = implicitTag
		addr.Raw[1] = byte(idx)
		copy(addr.Raw[2:], hash)
	case idx == len(keyHashPrefixes):
		addr.Raw[0] = originatedTag
		copy(addr.Raw[1:], hash)
	default:
		addr.Raw[0] = smartRollupTag
		copy(addr.Raw[1:], hash)
	}
	return addr, nil
}

// MustParseAddress is ParseAddress panicking on error
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes decodes the binary form, where any bytes after the
// first 22 name the entrypoint.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) < addressLen {
		return Address{}, errBadLength
	}
	var addr Address
	copy(addr.Raw[:], b[:addressLen])
	switch addr.Raw[0] {
	case implicitTag:
		if addr.Raw[1] > byte(BLS12381) {
			return Address{}, errBadPrefix
		}
	case originatedTag, smartRollupTag:
		if addr.Raw[addressLen-1] != 0 {
			return Address{}, errBadLength
		}
	default:
		return Address{}, errBadPrefix
	}
	if ep := string(b[addressLen:]); ep != "" {
		if len(ep) > maxEntrypoint || ep == defaultEntry {
			return Address{}, errBadEntrypoint
		}
		addr.Entrypoint = ep
	}
	return addr, nil
}

// Bytes returns the binary form including the entrypoint suffix
func (a Address) Bytes() []byte {
	return append(append([]byte{}, a.Raw[:]...), a.Entrypoint...)
}

// IsImplicit reports whether [a] belongs to a key rather than a contract
func (a Address) IsImplicit() bool { return a.Raw[0] == implicitTag }

// WithoutEntrypoint strips the entrypoint
func (a Address) WithoutEntrypoint() Address {
	a.Entrypoint = ""
	return a
}

func (a Address) String() string {
	var s string
	switch a.Raw[0] {
	case implicitTag:
		s = b58Encode(keyHashPrefixes[a.Raw[1]], a.Raw[2:])
	case originatedTag:
		s = b58Encode(prefixKT1, a.Raw[1:addressLen-1])
	default:
		s = b58Encode(prefixSr1, a.Raw[1:addressLen-1])
	}
	if a.Entrypoint != "" {
		s += "%" + a.Entrypoint
	}
	return s
}

// KeyHash is the blake2b-160 digest of a public key, tagged with its curve
type KeyHash struct {
	Curve Curve
	Hash  [hashLen]byte
}

func ParseKeyHash(s string) (KeyHash, error) {
	hash, idx, err := b58Decode(s, keyHashPrefixes...)
	if err != nil {
		return KeyHash{}, fmt.Errorf("invalid key hash %q: %w", s, err)
	}
	kh := KeyHash{Curve: Curve(idx)}
	copy(kh.Hash[:], hash)
	return kh, nil
}

func KeyHashFromBytes(b []byte) (KeyHash, error) {
	if len(b) != hashLen+1 || b[0] > byte(BLS12381) {
		return KeyHash{}, errBadLength
	}
	kh := KeyHash{Curve: Curve(b[0])}
	copy(kh.Hash[:], b[1:])
	return kh, nil
}

func (k KeyHash) Bytes() []byte { return append([]byte{byte(k.Curve)}, k.Hash[:]...) }

func (k KeyHash) String() string { return b58Encode(keyHashPrefixes[k.Curve], k.Hash[:]) }

// Address returns the implicit account of [k]
func (k KeyHash) Address() Address {
	var a Address
	a.Raw[0] = implicitTag
	a.Raw[1] = byte(k.Curve)
	copy(a.Raw[2:], k.Hash[:])
	return a
}

// Key is a curve tagged public key
type Key struct {
	Curve Curve
	Data  []byte
}

func ParseKey(s string) (Key, error) {
	data, idx, err := b58Decode(s, keyPrefixes...)
	if err != nil {
		return Key{}, fmt.Errorf("invalid public key %q: %w", s, err)
	}
	return Key{Curve: Curve(idx), Data: data}, nil
}

func KeyFromBytes(b []byte) (Key, error) {
	if len(b) == 0 || int(b[0]) >= len(keyPrefixes) {
		return Key{}, errBadPrefix
	}
	if len(b)-1 != keyPrefixes[b[0]].length {
		return Key{}, errBadLength
	}
	return Key{Curve: Curve(b[0]), Data: append([]byte{}, b[1:]...)}, nil
}

func (k Key) Bytes() []byte { return append([]byte{byte(k.Curve)}, k.Data...) }

func (k Key) String() string { return b58Encode(keyPrefixes[k.Curve], k.Data) }

// Hash returns the key hash of [k]
func (k Key) Hash() KeyHash {
	h, _ := blake2b.New(hashLen, nil)
	_, _ = h.Write(k.Data)
	kh := KeyHash{Curve: k.Curve}
	copy(kh.Hash[:], h.Sum(nil))
	return kh
}

// Verify checks [sig] over the blake2b-256 digest of [msg]
func (k Key) Verify(msg []byte, sig []byte) (bool, error) {
	switch k.Curve {
	case Ed25519:
		digest := blake2b.Sum256(msg)
		return ed25519.Verify(ed25519.PublicKey(k.Data), digest[:], sig), nil
	default:
		return false, &InstructionUnsupportedError{Instruction: fmt.Sprintf("CHECK_SIGNATURE over curve %d", k.Curve)}
	}
}

// Signature is a raw 64 byte signature
type Signature []byte

// ParseSignature reads any of the tagged or generic signature encodings
func ParseSignature(s string) (Signature, error) {
	sig, _, err := b58Decode(s, prefixEdsig, prefixSpsig, prefixP2sig, prefixSig)
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", s, err)
	}
	return Signature(sig), nil
}

func (s Signature) String() string { return b58Encode(prefixSig, s) }

// ChainID identifies the chain a script runs on
type ChainID [chainIDLen]byte

func ParseChainID(s string) (ChainID, error) {
	var id ChainID
	raw, _, err := b58Decode(s, prefixChainID)
	if err != nil {
		return id, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	copy(id[:], raw)
	return id, nil
}

func (c ChainID) String() string { return b58Encode(prefixChainID, c[:]) }

// ContractAddress derives the KT1 address of a contract originated from
// [seed].
func ContractAddress(seed []byte) Address {
	h, _ := blake2b.New(hashLen, nil)
	_, _ = h.Write(seed)
	var a Address
	a.Raw[0] = originatedTag
	copy(a.Raw[1:], h.Sum(nil))
	return a
}

// ScriptExprHash returns the base58 "expr" hash of packed data, the key
// under which big map entries are stored.
func ScriptExprHash(packed []byte) (string, [32]byte) {
	digest := blake2b.Sum256(packed)
	return b58Encode(prefixExpr, digest[:]), digest
}
