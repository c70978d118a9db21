// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package micheline implements the generic literal tree used to write
// Michelson types, data and instructions, together with its text and
// binary encodings.
package micheline

import (
	"math/big"
)

// Kind is the shape of a Node
type Kind byte

const (
	KindInt Kind = iota
	KindString
	KindBytes
	KindPrim
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindPrim:
		return "primitive"
	case KindSeq:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is a single Micheline expression.
// Only the fields relevant to [Kind] are populated.
type Node struct {
	Kind   Kind
	Int    *big.Int
	Str    string
	Bytes  []byte
	Prim   string
	Args   []Node
	Annots []string
}

// NewInt returns an integer node
func NewInt(v int64) Node { return Node{Kind: KindInt, Int: big.NewInt(v)} }

// NewBigInt returns an integer node holding a copy of [v]
func NewBigInt(v *big.Int) Node { return Node{Kind: KindInt, Int: new(big.Int).Set(v)} }

// NewString returns a string node
func NewString(s string) Node { return Node{Kind: KindString, Str: s} }

// NewBytes returns a bytes node
func NewBytes(b []byte) Node {
	return Node{Kind: KindBytes, Bytes: append([]byte{}, b...)}
}

// NewPrim returns a primitive application without annotations
func NewPrim(prim string, args ...Node) Node {
	return Node{Kind: KindPrim, Prim: prim, Args: args}
}

// NewSeq returns a sequence node
func NewSeq(items ...Node) Node {
	if items == nil {
		items = []Node{}
	}
	return Node{Kind: KindSeq, Args: items}
}

// IsPrim reports whether [n] is an application of [prim]
func (n Node) IsPrim(prim string) bool {
	return n.Kind == KindPrim && n.Prim == prim
}

// WithAnnots returns a copy of [n] carrying [annots]
func (n Node) WithAnnots(annots ...string) Node {
	n.Annots = append([]string{}, annots...)
	return n
}

// Annot returns the first annotation starting with [prefix], or the empty
// string.
func (n Node) Annot(prefix byte) string {
	for _, a := range n.Annots {
		if len(a) > 0 && a[0] == prefix {
			return a
		}
	}
	return ""
}

// Equal reports structural equality, annotations included.
func (n Node) Equal(o Node) bool {
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindInt:
		return n.Int.Cmp(o.Int) == 0
	case KindString:
		return n.Str == o.Str
	case KindBytes:
		return string(n.Bytes) == string(o.Bytes)
	case KindPrim:
		if n.Prim != o.Prim || len(n.Annots) != len(o.Annots) {
			return false
		}
		for i := range n.Annots {
			if n.Annots[i] != o.Annots[i] {
				return false
			}
		}
	}
	if len(n.Args) != len(o.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}
