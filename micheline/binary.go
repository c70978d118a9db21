// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package micheline

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// MaxEncodedSize bounds the size of an encoded expression
const MaxEncodedSize = 1 << 24

const (
	tagInt            byte = 0x00
	tagString         byte = 0x01
	tagSeq            byte = 0x02
	tagPrim0          byte = 0x03
	tagPrim0Annots    byte = 0x04
	tagPrim1          byte = 0x05
	tagPrim1Annots    byte = 0x06
	tagPrim2          byte = 0x07
	tagPrim2Annots    byte = 0x08
	tagPrimN          byte = 0x09
	tagBytes          byte = 0x0A
	zarithContinue    byte = 0x80
	zarithSign        byte = 0x40
	zarithFirstBits        = 6
	zarithFollowBits       = 7
)

var (
	errUnknownPrimitive = errors.New("unknown primitive")
	errUnknownTag       = errors.New("unknown node tag")
	errBadZarith        = errors.New("malformed zarith integer")
)

// Primitives lists the Michelson primitives in the order of their binary
// codes.
var Primitives = []string{
	"parameter", "storage", "code", "False", "Elt", "Left", "None", "Pair",
	"Right", "Some", "True", "Unit", "PACK", "UNPACK", "BLAKE2B", "SHA256",
	"SHA512", "ABS", "ADD", "AMOUNT", "AND", "BALANCE", "CAR", "CDR",
	"CHECK_SIGNATURE", "COMPARE", "CONCAT", "CONS", "CREATE_ACCOUNT",
	"CREATE_CONTRACT", "IMPLICIT_ACCOUNT", "DIP", "DROP", "DUP", "EDIV",
	"EMPTY_MAP", "EMPTY_SET", "EQ", "EXEC", "FAILWITH", "GE", "GET", "GT",
	"HASH_KEY", "IF", "IF_CONS", "IF_LEFT", "IF_NONE", "INT", "LAMBDA", "LE",
	"LEFT", "LOOP", "LSL", "LSR", "LT", "MAP", "MEM", "MUL", "NEG", "NEQ",
	"NIL", "NONE", "NOT", "NOW", "OR", "PAIR", "PUSH", "RIGHT", "SIZE",
	"SOME", "SOURCE", "SENDER", "SELF", "STEPS_TO_QUOTA", "SUB", "SWAP",
	"TRANSFER_TOKENS", "SET_DELEGATE", "UNIT", "UPDATE", "XOR", "ITER",
	"LOOP_LEFT", "ADDRESS", "CONTRACT", "ISNAT", "CAST", "RENAME", "bool",
	"contract", "int", "key", "key_hash", "lambda", "list", "map", "big_map",
	"nat", "option", "or", "pair", "set", "signature", "string", "bytes",
	"mutez", "timestamp", "unit", "operation", "address", "SLICE", "DIG",
	"DUG", "EMPTY_BIG_MAP", "APPLY", "chain_id", "CHAIN_ID", "LEVEL",
	"SELF_ADDRESS", "never", "NEVER", "UNPAIR", "VOTING_POWER",
	"TOTAL_VOTING_POWER", "KECCAK", "SHA3", "PAIRING_CHECK", "bls12_381_g1",
	"bls12_381_g2", "bls12_381_fr", "sapling_state",
	"sapling_transaction_deprecated", "SAPLING_EMPTY_STATE",
	"SAPLING_VERIFY_UPDATE", "ticket", "TICKET_DEPRECATED", "READ_TICKET",
	"SPLIT_TICKET", "JOIN_TICKETS", "GET_AND_UPDATE", "chest", "chest_key",
	"OPEN_CHEST", "VIEW", "view", "constant", "SUB_MUTEZ",
	"tx_rollup_l2_address", "MIN_BLOCK_TIME", "sapling_transaction", "EMIT",
	"Lambda_rec", "LAMBDA_REC", "TICKET", "BYTES", "NAT",
}

var primitiveCodes = make(map[string]byte, len(Primitives))

func init() {
	for i, p := range Primitives {
		primitiveCodes[p] = byte(i)
	}
}

// Encode returns the binary encoding of [n]
func Encode(n Node) ([]byte, error) {
	p := &wrappers.Packer{MaxSize: MaxEncodedSize}
	if err := encode(p, n); err != nil {
		return nil, err
	}
	if p.Errored() {
		return nil, p.Err
	}
	return p.Bytes, nil
}

func encode(p *wrappers.Packer, n Node) error {
	switch n.Kind {
	case KindInt:
		p.PackByte(tagInt)
		p.PackFixedBytes(encodeZarith(n.Int))
	case KindString:
		p.PackByte(tagString)
		p.PackBytes([]byte(n.Str))
	case KindBytes:
		p.PackByte(tagBytes)
		p.PackBytes(n.Bytes)
	case KindSeq:
		body, err := encodeList(n.Args)
		if err != nil {
			return err
		}
		p.PackByte(tagSeq)
		p.PackBytes(body)
	case KindPrim:
		code, ok := primitiveCodes[n.Prim]
		if !ok {
			return fmt.Errorf("%w: %s", errUnknownPrimitive, n.Prim)
		}
		annots := len(n.Annots) > 0
		switch {
		case len(n.Args) <= 2:
			tag := tagPrim0 + byte(2*len(n.Args))
			if annots {
				tag++
			}
			p.PackByte(tag)
			p.PackByte(code)
			for _, arg := range n.Args {
				if err := encode(p, arg); err != nil {
					return err
				}
			}
			if annots {
				p.PackBytes([]byte(strings.Join(n.Annots, " ")))
			}
		default:
			body, err := encodeList(n.Args)
			if err != nil {
				return err
			}
			p.PackByte(tagPrimN)
			p.PackByte(code)
			p.PackBytes(body)
			p.PackBytes([]byte(strings.Join(n.Annots, " ")))
		}
	default:
		return errUnknownTag
	}
	return nil
}

func encodeList(items []Node) ([]byte, error) {
	p := &wrappers.Packer{MaxSize: MaxEncodedSize}
	for _, item := range items {
		if err := encode(p, item); err != nil {
			return nil, err
		}
	}
	if p.Errored() {
		return nil, p.Err
	}
	if p.Bytes == nil {
		return []byte{}, nil
	}
	return p.Bytes, nil
}

// Decode parses the binary encoding of exactly one node
func Decode(b []byte) (Node, error) {
	p := &wrappers.Packer{Bytes: b}
	n, err := decode(p)
	if err != nil {
		return Node{}, err
	}
	if p.Offset != len(b) {
		return Node{}, errTrailingInput
	}
	return n, nil
}

func decode(p *wrappers.Packer) (Node, error) {
	tag := p.UnpackByte()
	if p.Errored() {
		return Node{}, p.Err
	}
	switch tag {
	case tagInt:
		v, n, err := decodeZarith(p.Bytes[p.Offset:])
		if err != nil {
			return Node{}, err
		}
		p.Offset += n
		return Node{Kind: KindInt, Int: v}, nil
	case tagString:
		s := p.UnpackBytes()
		if p.Errored() {
			return Node{}, p.Err
		}
		return NewString(string(s)), nil
	case tagBytes:
		b := p.UnpackBytes()
		if p.Errored() {
			return Node{}, p.Err
		}
		return NewBytes(b), nil
	case tagSeq:
		items, err := decodeList(p)
		if err != nil {
			return Node{}, err
		}
		return NewSeq(items...), nil
	case tagPrim0, tagPrim0Annots, tagPrim1, tagPrim1Annots, tagPrim2, tagPrim2Annots:
		prim, err := decodePrim(p)
		if err != nil {
			return Node{}, err
		}
		n := Node{Kind: KindPrim, Prim: prim}
		for i := 0; i < int(tag-tagPrim0)/2; i++ {
			arg, err := decode(p)
			if err != nil {
				return Node{}, err
			}
			n.Args = append(n.Args, arg)
		}
		if (tag-tagPrim0)%2 == 1 {
			if n.Annots, err = decodeAnnots(p); err != nil {
				return Node{}, err
			}
		}
		return n, nil
	case tagPrimN:
		prim, err := decodePrim(p)
		if err != nil {
			return Node{}, err
		}
		args, err := decodeList(p)
		if err != nil {
			return Node{}, err
		}
		annots, err := decodeAnnots(p)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindPrim, Prim: prim, Args: args, Annots: annots}, nil
	default:
		return Node{}, fmt.Errorf("%w: 0x%02x", errUnknownTag, tag)
	}
}

func decodePrim(p *wrappers.Packer) (string, error) {
	code := p.UnpackByte()
	if p.Errored() {
		return "", p.Err
	}
	if int(code) >= len(Primitives) {
		return "", fmt.Errorf("%w: 0x%02x", errUnknownPrimitive, code)
	}
	return Primitives[code], nil
}

func decodeList(p *wrappers.Packer) ([]Node, error) {
	body := p.UnpackBytes()
	if p.Errored() {
		return nil, p.Err
	}
	sub := &wrappers.Packer{Bytes: body}
	items := []Node{}
	for sub.Offset < len(body) {
		item, err := decode(sub)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeAnnots(p *wrappers.Packer) ([]string, error) {
	raw := p.UnpackBytes()
	if p.Errored() {
		return nil, p.Err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return strings.Split(string(raw), " "), nil
}

// encodeZarith writes [v] as a signed variable length integer: the first
// byte carries the sign and 6 bits, following bytes carry 7 bits each.
func encodeZarith(v *big.Int) []byte {
	abs := new(big.Int).Abs(v)
	first := byte(new(big.Int).And(abs, big.NewInt(0x3f)).Uint64())
	if v.Sign() < 0 {
		first |= zarithSign
	}
	abs.Rsh(abs, zarithFirstBits)
	out := []byte{first}
	for abs.Sign() > 0 {
		out[len(out)-1] |= zarithContinue
		out = append(out, byte(new(big.Int).And(abs, big.NewInt(0x7f)).Uint64()))
		abs.Rsh(abs, zarithFollowBits)
	}
	return out
}

func decodeZarith(b []byte) (*big.Int, int, error) {
	if len(b) == 0 {
		return nil, 0, errBadZarith
	}
	v := big.NewInt(int64(b[0] & 0x3f))
	negative := b[0]&zarithSign != 0
	shift := uint(zarithFirstBits)
	i := 0
	for b[i]&zarithContinue != 0 {
		i++
		if i >= len(b) {
			return nil, 0, errBadZarith
		}
		// trailing zero groups are not canonical
		if b[i] == 0 {
			return nil, 0, errBadZarith
		}
		chunk := new(big.Int).Lsh(big.NewInt(int64(b[i]&0x7f)), shift)
		v.Or(v, chunk)
		shift += zarithFollowBits
	}
	if negative {
		if v.Sign() == 0 {
			return nil, 0, errBadZarith
		}
		v.Neg(v)
	}
	return v, i + 1, nil
}
