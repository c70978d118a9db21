// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ava-labs/michelsonvm/micheline"
)

var (
	maxMutez = big.NewInt(MaxMutez)
	// timestamps within this range print as RFC3339
	minReadableTime = big.NewInt(time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxReadableTime = big.NewInt(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix())
)

func literalMismatch(t Type, n micheline.Node) error {
	return &TypeMismatchError{Expected: t.String(), Found: describe(n)}
}

// FromData converts the literal [n] into a value of type [t]
func FromData(n micheline.Node, t Type) (Item, error) {
	switch t.Code {
	case TInt:
		if n.Kind != micheline.KindInt {
			return nil, literalMismatch(t, n)
		}
		return Int{V: new(big.Int).Set(n.Int)}, nil
	case TNat:
		if n.Kind != micheline.KindInt || n.Int.Sign() < 0 {
			return nil, literalMismatch(t, n)
		}
		return Nat{V: new(big.Int).Set(n.Int)}, nil
	case TMutez:
		if n.Kind != micheline.KindInt || n.Int.Sign() < 0 {
			return nil, literalMismatch(t, n)
		}
		if n.Int.Cmp(maxMutez) > 0 {
			return nil, ErrMutezOverflow
		}
		return Mutez(n.Int.Int64()), nil
	case TBool:
		switch {
		case n.IsPrim("True") && len(n.Args) == 0:
			return Bool(true), nil
		case n.IsPrim("False") && len(n.Args) == 0:
			return Bool(false), nil
		}
		return nil, literalMismatch(t, n)
	case TString:
		if n.Kind != micheline.KindString {
			return nil, literalMismatch(t, n)
		}
		return String(n.Str), nil
	case TBytes:
		if n.Kind != micheline.KindBytes {
			return nil, literalMismatch(t, n)
		}
		return Bytes(append([]byte{}, n.Bytes...)), nil
	case TTimestamp:
		switch n.Kind {
		case micheline.KindInt:
			return Timestamp{V: new(big.Int).Set(n.Int)}, nil
		case micheline.KindString:
			ts, err := time.Parse(time.RFC3339, n.Str)
			if err != nil {
				return nil, literalMismatch(t, n)
			}
			return NewTimestamp(ts.Unix()), nil
		}
		return nil, literalMismatch(t, n)
	case TUnit:
		if !n.IsPrim("Unit") || len(n.Args) != 0 {
			return nil, literalMismatch(t, n)
		}
		return Unit{}, nil
	case TKey, TKeyHash, TSignature, TAddress, TChainID:
		return encodedFromData(n, t)
	case TContract:
		v, err := encodedFromData(n, AddressType)
		if err != nil {
			return nil, err
		}
		return Contract{Address: v.(Address), Param: t.Args[0]}, nil
	case TOption:
		switch {
		case n.IsPrim("None") && len(n.Args) == 0:
			return NewNone(t.Args[0]), nil
		case n.IsPrim("Some") && len(n.Args) == 1:
			v, err := FromData(n.Args[0], t.Args[0])
			if err != nil {
				return nil, err
			}
			return Option{Elem: t.Args[0], Value: v}, nil
		}
		return nil, literalMismatch(t, n)
	case TOr:
		switch {
		case n.IsPrim("Left") && len(n.Args) == 1:
			v, err := FromData(n.Args[0], t.Args[0])
			if err != nil {
				return nil, err
			}
			return Or{Left: t.Args[0], Right: t.Args[1], Value: v}, nil
		case n.IsPrim("Right") && len(n.Args) == 1:
			v, err := FromData(n.Args[0], t.Args[1])
			if err != nil {
				return nil, err
			}
			return Or{Left: t.Args[0], Right: t.Args[1], IsRight: true, Value: v}, nil
		}
		return nil, literalMismatch(t, n)
	case TPair:
		return pairFromData(n, t)
	case TList:
		if n.Kind != micheline.KindSeq {
			return nil, literalMismatch(t, n)
		}
		items := make([]Item, len(n.Args))
		for i, e := range n.Args {
			v, err := FromData(e, t.Args[0])
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return List{Elem: t.Args[0], Items: items}, nil
	case TSet:
		if n.Kind != micheline.KindSeq {
			return nil, literalMismatch(t, n)
		}
		s := Set{Elem: t.Args[0], Items: []Item{}}
		for _, e := range n.Args {
			v, err := FromData(e, t.Args[0])
			if err != nil {
				return nil, err
			}
			if s, err = s.Update(v, true); err != nil {
				return nil, err
			}
		}
		if len(s.Items) != len(n.Args) {
			return nil, &TypeMismatchError{Expected: t.String(), Found: "duplicate set element"}
		}
		return s, nil
	case TMap:
		entries, err := entriesFromData(n, t)
		if err != nil {
			return nil, err
		}
		return Map{Key: t.Args[0], Value: t.Args[1], Entries: entries}, nil
	case TBigMap:
		if n.Kind == micheline.KindInt {
			return BigMap{ID: new(big.Int).Set(n.Int), Key: t.Args[0], Value: t.Args[1], Overlay: []MapEntry{}}, nil
		}
		entries, err := entriesFromData(n, t)
		if err != nil {
			return nil, err
		}
		return BigMap{Key: t.Args[0], Value: t.Args[1], Overlay: entries}, nil
	case TLambda:
		if n.Kind != micheline.KindSeq {
			return nil, literalMismatch(t, n)
		}
		return Lambda{Param: t.Args[0], Return: t.Args[1], Code: n}, nil
	case TTicket:
		ft := PairOf(AddressType, t.Args[0], NatType)
		v, err := pairFromData(n, ft)
		if err != nil {
			return nil, err
		}
		p := v.(Pair)
		return Ticket{Ticketer: p.Elems[0].(Address), Content: p.Elems[1], Amount: p.Elems[2].(Nat).V}, nil
	default:
		return nil, &TypeUnsupportedError{Type: t.String()}
	}
}

// pairFromData accepts "Pair a b ...", and sequences of two or more
// fields, in any comb shape that matches [t].
func pairFromData(n micheline.Node, t Type) (Item, error) {
	var args []micheline.Node
	switch {
	case n.IsPrim("Pair") && len(n.Args) >= 2:
		args = n.Args
	case n.Kind == micheline.KindSeq && len(n.Args) >= 2:
		args = n.Args
	default:
		return nil, literalMismatch(t, n)
	}

	items := make([]Item, 0, len(t.Args))
	for i, ft := range t.Args {
		last := i == len(args)-1
		var (
			v   Item
			err error
		)
		switch {
		case last && i < len(t.Args)-1:
			// the last literal field stands for the rest of the comb
			v, err = FromData(args[i], t.tail(i))
		case i == len(t.Args)-1 && len(args) > len(t.Args):
			// the extra literal fields form the last component
			v, err = FromData(micheline.NewPrim("Pair", args[i:]...), ft)
		default:
			v, err = FromData(args[i], ft)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if last {
			break
		}
	}
	p := NewPair(items...)
	p.Annot = t.Annot
	return p, nil
}

func entriesFromData(n micheline.Node, t Type) ([]MapEntry, error) {
	if n.Kind != micheline.KindSeq {
		return nil, literalMismatch(t, n)
	}
	entries := make([]MapEntry, 0, len(n.Args))
	for _, e := range n.Args {
		if !e.IsPrim("Elt") || len(e.Args) != 2 {
			return nil, literalMismatch(t, e)
		}
		k, err := FromData(e.Args[0], t.Args[0])
		if err != nil {
			return nil, err
		}
		v, err := FromData(e.Args[1], t.Args[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: k, Value: v})
	}
	var cmpErr error
	sort.SliceStable(entries, func(i, j int) bool {
		c, err := Compare(entries[i].Key, entries[j].Key)
		if err != nil {
			cmpErr = err
		}
		return c < 0
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	for i := 1; i < len(entries); i++ {
		if c, _ := Compare(entries[i-1].Key, entries[i].Key); c == 0 {
			return nil, &TypeMismatchError{Expected: t.String(), Found: "duplicate map key"}
		}
	}
	return entries, nil
}

// encodedFromData reads values that have a base58 readable form and a
// binary optimized form.
func encodedFromData(n micheline.Node, t Type) (Item, error) {
	var (
		v   Item
		err error
	)
	switch n.Kind {
	case micheline.KindString:
		switch t.Code {
		case TKey:
			v, err = ParseKey(n.Str)
		case TKeyHash:
			v, err = ParseKeyHash(n.Str)
		case TSignature:
			v, err = ParseSignature(n.Str)
		case TAddress:
			v, err = ParseAddress(n.Str)
		case TChainID:
			v, err = ParseChainID(n.Str)
		}
	case micheline.KindBytes:
		switch t.Code {
		case TKey:
			v, err = KeyFromBytes(n.Bytes)
		case TKeyHash:
			v, err = KeyHashFromBytes(n.Bytes)
		case TSignature:
			if len(n.Bytes) != signatureLen {
				return nil, literalMismatch(t, n)
			}
			v = Signature(append([]byte{}, n.Bytes...))
		case TAddress:
			v, err = AddressFromBytes(n.Bytes)
		case TChainID:
			if len(n.Bytes) != chainIDLen {
				return nil, literalMismatch(t, n)
			}
			var id ChainID
			copy(id[:], n.Bytes)
			v = id
		}
	default:
		return nil, literalMismatch(t, n)
	}
	if err != nil {
		return nil, &TypeMismatchError{Expected: t.String(), Found: err.Error()}
	}
	return v, nil
}

// IntoData converts [v] to its readable literal form
func IntoData(v Item) micheline.Node { return unparse(v, false) }

// IntoOptimizedData converts [v] to the compact literal form used by PACK:
// binary encodings for keys and addresses, integer timestamps and binary
// pair combs.
func IntoOptimizedData(v Item) micheline.Node { return unparse(v, true) }

func unparse(v Item, optimized bool) micheline.Node {
	switch x := v.(type) {
	case Int:
		return micheline.NewBigInt(x.V)
	case Nat:
		return micheline.NewBigInt(x.V)
	case Mutez:
		return micheline.NewInt(int64(x))
	case Bool:
		if x {
			return micheline.NewPrim("True")
		}
		return micheline.NewPrim("False")
	case String:
		return micheline.NewString(string(x))
	case Bytes:
		return micheline.NewBytes(x)
	case Timestamp:
		if optimized || x.V.Cmp(minReadableTime) < 0 || x.V.Cmp(maxReadableTime) > 0 {
			return micheline.NewBigInt(x.V)
		}
		return micheline.NewString(time.Unix(x.V.Int64(), 0).UTC().Format(time.RFC3339))
	case Unit:
		return micheline.NewPrim("Unit")
	case Key:
		if optimized {
			return micheline.NewBytes(x.Bytes())
		}
		return micheline.NewString(x.String())
	case KeyHash:
		if optimized {
			return micheline.NewBytes(x.Bytes())
		}
		return micheline.NewString(x.String())
	case Signature:
		if optimized {
			return micheline.NewBytes(x)
		}
		return micheline.NewString(x.String())
	case Address:
		if optimized {
			return micheline.NewBytes(x.Bytes())
		}
		return micheline.NewString(x.String())
	case ChainID:
		if optimized {
			return micheline.NewBytes(x[:])
		}
		return micheline.NewString(x.String())
	case Contract:
		return unparse(x.Address, optimized)
	case Option:
		if x.IsNone() {
			return micheline.NewPrim("None")
		}
		return micheline.NewPrim("Some", unparse(x.Value, optimized))
	case Or:
		if x.IsRight {
			return micheline.NewPrim("Right", unparse(x.Value, optimized))
		}
		return micheline.NewPrim("Left", unparse(x.Value, optimized))
	case Pair:
		if optimized {
			n := unparse(x.Elems[len(x.Elems)-1], true)
			for i := len(x.Elems) - 2; i >= 0; i-- {
				n = micheline.NewPrim("Pair", unparse(x.Elems[i], true), n)
			}
			return n
		}
		args := make([]micheline.Node, len(x.Elems))
		for i, e := range x.Elems {
			args[i] = unparse(e, false)
		}
		return micheline.NewPrim("Pair", args...)
	case List:
		return unparseItems(x.Items, optimized)
	case Set:
		return unparseItems(x.Items, optimized)
	case Map:
		return unparseEntries(x.Entries, optimized)
	case BigMap:
		if x.ID != nil {
			return micheline.NewBigInt(x.ID)
		}
		return unparseEntries(x.Overlay, optimized)
	case Lambda:
		return x.Code
	case Ticket:
		return micheline.NewPrim("Pair",
			unparse(x.Ticketer, optimized),
			unparse(x.Content, optimized),
			micheline.NewBigInt(x.Amount),
		)
	default:
		panic(fmt.Sprintf("unparse: unknown item %T", v))
	}
}

func unparseItems(items []Item, optimized bool) micheline.Node {
	nodes := make([]micheline.Node, len(items))
	for i, e := range items {
		nodes[i] = unparse(e, optimized)
	}
	return micheline.NewSeq(nodes...)
}

func unparseEntries(entries []MapEntry, optimized bool) micheline.Node {
	nodes := make([]micheline.Node, 0, len(entries))
	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		nodes = append(nodes, micheline.NewPrim("Elt", unparse(e.Key, optimized), unparse(e.Value, optimized)))
	}
	return micheline.NewSeq(nodes...)
}
