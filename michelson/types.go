// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"github.com/ava-labs/michelsonvm/micheline"
)

// TypeCode identifies a Michelson type constructor
type TypeCode byte

const (
	TInt TypeCode = iota
	TNat
	TMutez
	TBool
	TString
	TBytes
	TTimestamp
	TKey
	TKeyHash
	TSignature
	TAddress
	TContract
	TOption
	TOr
	TPair
	TList
	TSet
	TMap
	TBigMap
	TLambda
	TTicket
	TUnit
	TChainID
	TOperation
	TNever
)

var typeNames = map[TypeCode]string{
	TInt:       "int",
	TNat:       "nat",
	TMutez:     "mutez",
	TBool:      "bool",
	TString:    "string",
	TBytes:     "bytes",
	TTimestamp: "timestamp",
	TKey:       "key",
	TKeyHash:   "key_hash",
	TSignature: "signature",
	TAddress:   "address",
	TContract:  "contract",
	TOption:    "option",
	TOr:        "or",
	TPair:      "pair",
	TList:      "list",
	TSet:       "set",
	TMap:       "map",
	TBigMap:    "big_map",
	TLambda:    "lambda",
	TTicket:    "ticket",
	TUnit:      "unit",
	TChainID:   "chain_id",
	TOperation: "operation",
	TNever:     "never",
}

// arity of each constructor; pair is variadic with at least 2 arguments
var typeArity = map[TypeCode]int{
	TContract: 1,
	TOption:   1,
	TOr:       2,
	TList:     1,
	TSet:      1,
	TMap:      2,
	TBigMap:   2,
	TLambda:   2,
	TTicket:   1,
}

var typeCodes = func() map[string]TypeCode {
	m := make(map[string]TypeCode, len(typeNames))
	for code, name := range typeNames {
		m[name] = code
	}
	return m
}()

func (c TypeCode) String() string {
	if name, ok := typeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Type is a Michelson type. Pair types are kept in flattened n-ary form:
// a right comb "pair a (pair b c)" is stored as "pair a b c", unless the
// inner pair carries an annotation.
type Type struct {
	Code  TypeCode
	Args  []Type
	Annot string
}

// Commonly used nullary types
var (
	IntType       = Type{Code: TInt}
	NatType       = Type{Code: TNat}
	MutezType     = Type{Code: TMutez}
	BoolType      = Type{Code: TBool}
	StringType    = Type{Code: TString}
	BytesType     = Type{Code: TBytes}
	TimestampType = Type{Code: TTimestamp}
	KeyType       = Type{Code: TKey}
	KeyHashType   = Type{Code: TKeyHash}
	SignatureType = Type{Code: TSignature}
	AddressType   = Type{Code: TAddress}
	UnitType      = Type{Code: TUnit}
	ChainIDType   = Type{Code: TChainID}
	OperationType = Type{Code: TOperation}
	NeverType     = Type{Code: TNever}
)

func OptionOf(t Type) Type        { return Type{Code: TOption, Args: []Type{t}} }
func ListOf(t Type) Type          { return Type{Code: TList, Args: []Type{t}} }
func SetOf(t Type) Type           { return Type{Code: TSet, Args: []Type{t}} }
func ContractOf(t Type) Type      { return Type{Code: TContract, Args: []Type{t}} }
func TicketOf(t Type) Type        { return Type{Code: TTicket, Args: []Type{t}} }
func OrOf(l, r Type) Type         { return Type{Code: TOr, Args: []Type{l, r}} }
func MapOf(k, v Type) Type        { return Type{Code: TMap, Args: []Type{k, v}} }
func BigMapOf(k, v Type) Type     { return Type{Code: TBigMap, Args: []Type{k, v}} }
func LambdaOf(arg, ret Type) Type { return Type{Code: TLambda, Args: []Type{arg, ret}} }

// PairOf builds a pair type, flattening an unannotated right comb.
func PairOf(fields ...Type) Type {
	if len(fields) < 2 {
		panic("pair type needs at least two fields")
	}
	args := append([]Type{}, fields[:len(fields)-1]...)
	last := fields[len(fields)-1]
	if last.Code == TPair && last.Annot == "" {
		args = append(args, last.Args...)
	} else {
		args = append(args, last)
	}
	return Type{Code: TPair, Args: args}
}

// tail returns the type of the comb made of the pair fields starting at
// [from].
func (t Type) tail(from int) Type {
	if from == len(t.Args)-1 {
		return t.Args[from]
	}
	return Type{Code: TPair, Args: t.Args[from:]}
}

// Equal compares types, ignoring annotations
func (t Type) Equal(o Type) bool {
	if t.Code != o.Code || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Comparable reports whether values of [t] have a total order
func (t Type) Comparable() bool {
	switch t.Code {
	case TInt, TNat, TMutez, TBool, TString, TBytes, TTimestamp, TKey,
		TKeyHash, TSignature, TAddress, TUnit, TChainID, TNever:
		return true
	case TOption, TOr, TPair:
		for _, a := range t.Args {
			if !a.Comparable() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Node returns the Micheline form of [t]. Pairs are printed as right
// combs of binary pairs.
func (t Type) Node() micheline.Node {
	var n micheline.Node
	switch {
	case t.Code == TPair && len(t.Args) > 2:
		n = micheline.NewPrim("pair", t.Args[0].Node(), Type{Code: TPair, Args: t.Args[1:]}.Node())
	default:
		args := make([]micheline.Node, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Node()
		}
		n = micheline.NewPrim(t.Code.String(), args...)
	}
	if t.Annot != "" {
		n.Annots = []string{t.Annot}
	}
	return n
}

func (t Type) String() string { return t.Node().String() }

// ParseType reads a type from its Micheline form
func ParseType(n micheline.Node) (Type, error) {
	if n.Kind != micheline.KindPrim {
		return Type{}, &TypeMismatchError{Expected: "type", Found: describe(n)}
	}
	code, ok := typeCodes[n.Prim]
	if !ok {
		return Type{}, &TypeUnsupportedError{Type: n.Prim}
	}
	var annot string
	if a := n.Annot('%'); a != "" {
		annot = a
	} else {
		annot = n.Annot(':')
	}

	args := make([]Type, len(n.Args))
	for i, a := range n.Args {
		t, err := ParseType(a)
		if err != nil {
			return Type{}, err
		}
		args[i] = t
	}

	if code == TPair {
		if len(args) < 2 {
			return Type{}, &InvalidArityError{Expected: 2, Found: len(args)}
		}
		t := PairOf(args...)
		t.Annot = annot
		return t, nil
	}
	if len(args) != typeArity[code] {
		return Type{}, &InvalidArityError{Expected: typeArity[code], Found: len(args)}
	}
	t := Type{Code: code, Args: args, Annot: annot}
	switch code {
	case TSet, TMap, TBigMap, TTicket:
		if !args[0].Comparable() {
			return Type{}, &TypeMismatchError{Expected: "comparable type", Found: args[0].String()}
		}
	}
	return t, nil
}

// MustParseType parses a type from source text, panicking on error
func MustParseType(src string) Type {
	t, err := ParseType(micheline.MustParse(src))
	if err != nil {
		panic(err)
	}
	return t
}

// describe names the shape of a node for error reports
func describe(n micheline.Node) string {
	switch n.Kind {
	case micheline.KindPrim:
		return n.Prim
	case micheline.KindSeq:
		return "sequence"
	default:
		return n.String()
	}
}
