// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"math"
	"math/big"

	"github.com/ava-labs/michelsonvm/micheline"
)

// MaxMutez is the largest representable amount of mutez
const MaxMutez = math.MaxInt64

// Item is a value on the stack. Every item knows its own type.
// Items are immutable: instructions build new items instead of updating
// existing ones.
type Item interface {
	Type() Type
}

var (
	_ Item = Int{}
	_ Item = Nat{}
	_ Item = Mutez(0)
	_ Item = Bool(false)
	_ Item = String("")
	_ Item = Bytes(nil)
	_ Item = Timestamp{}
	_ Item = Key{}
	_ Item = KeyHash{}
	_ Item = Signature(nil)
	_ Item = Address{}
	_ Item = ChainID{}
	_ Item = Unit{}
	_ Item = Contract{}
	_ Item = Option{}
	_ Item = Or{}
	_ Item = Pair{}
	_ Item = List{}
	_ Item = Set{}
	_ Item = Map{}
	_ Item = BigMap{}
	_ Item = Lambda{}
	_ Item = Ticket{}
)

// Int is a signed integer of arbitrary size
type Int struct{ V *big.Int }

// Nat is a non-negative integer of arbitrary size
type Nat struct{ V *big.Int }

// Mutez is an amount in the smallest currency unit, in [0, MaxMutez]
type Mutez int64

type Bool bool

type String string

type Bytes []byte

// Timestamp counts seconds since the epoch
type Timestamp struct{ V *big.Int }

type Unit struct{}

// Contract is a typed reference to an address accepting [Param]
type Contract struct {
	Address Address
	Param   Type
}

// Option holds [Value], or nothing when Value is nil
type Option struct {
	Elem  Type
	Value Item
}

// Or is a tagged value of type "or Left Right"
type Or struct {
	Left    Type
	Right   Type
	IsRight bool
	Value   Item
}

// Pair is an n-ary tuple. An unannotated pair in the last position is
// always merged into its parent, so Elems never ends with one.
type Pair struct {
	Elems []Item
	Annot string
}

type List struct {
	Elem  Type
	Items []Item
}

// Set keeps its items sorted and without duplicates
type Set struct {
	Elem  Type
	Items []Item
}

type MapEntry struct {
	Key   Item
	Value Item
}

// Map keeps its entries sorted by key
type Map struct {
	Key     Type
	Value   Type
	Entries []MapEntry
}

// BigMap is a map whose entries live in the global context. ID is nil
// for a big map that has not been stored yet. Overlay holds the entries
// changed during the run, sorted by key, where a nil Value marks a
// removal.
type BigMap struct {
	ID      *big.Int
	Key     Type
	Value   Type
	Overlay []MapEntry
}

// Lambda holds an unchecked instruction body
type Lambda struct {
	Param  Type
	Return Type
	Code   micheline.Node
}

type Ticket struct {
	Ticketer Address
	Content  Item
	Amount   *big.Int
}

func NewInt(v int64) Int             { return Int{V: big.NewInt(v)} }
func NewNat(v uint64) Nat            { return Nat{V: new(big.Int).SetUint64(v)} }
func NewTimestamp(v int64) Timestamp { return Timestamp{V: big.NewInt(v)} }

// NewSome wraps [v] in an option
func NewSome(v Item) Option { return Option{Elem: v.Type(), Value: v} }

// NewNone returns the empty option of [elem]
func NewNone(elem Type) Option { return Option{Elem: elem} }

func NewLeft(v Item, right Type) Or { return Or{Left: v.Type(), Right: right, Value: v} }
func NewRight(left Type, v Item) Or { return Or{Left: left, Right: v.Type(), IsRight: true, Value: v} }

func NewList(elem Type, items ...Item) List {
	if items == nil {
		items = []Item{}
	}
	return List{Elem: elem, Items: items}
}

// NewPair builds a tuple from at least two items. When the last item is
// itself an unannotated pair its fields are spliced in, so that
// NewPair(a, NewPair(b, c)) and NewPair(a, b, c) are the same value.
func NewPair(items ...Item) Pair {
	if len(items) < 2 {
		panic("pair needs at least two items")
	}
	elems := append([]Item{}, items[:len(items)-1]...)
	last := items[len(items)-1]
	if p, ok := last.(Pair); ok && p.Annot == "" {
		elems = append(elems, p.Elems...)
	} else {
		elems = append(elems, last)
	}
	return Pair{Elems: elems}
}

// Car returns the first field
func (p Pair) Car() Item { return p.Elems[0] }

// Cdr returns the right comb formed by every field but the first
func (p Pair) Cdr() Item { return p.tail(1) }

func (p Pair) tail(from int) Item {
	if from == len(p.Elems)-1 {
		return p.Elems[from]
	}
	return Pair{Elems: append([]Item{}, p.Elems[from:]...)}
}

func (Int) Type() Type       { return IntType }
func (Nat) Type() Type       { return NatType }
func (Mutez) Type() Type     { return MutezType }
func (Bool) Type() Type      { return BoolType }
func (String) Type() Type    { return StringType }
func (Bytes) Type() Type     { return BytesType }
func (Timestamp) Type() Type { return TimestampType }
func (Key) Type() Type       { return KeyType }
func (KeyHash) Type() Type   { return KeyHashType }
func (Signature) Type() Type { return SignatureType }
func (Address) Type() Type   { return AddressType }
func (ChainID) Type() Type   { return ChainIDType }
func (Unit) Type() Type      { return UnitType }

func (c Contract) Type() Type { return ContractOf(c.Param) }
func (o Option) Type() Type   { return OptionOf(o.Elem) }
func (o Or) Type() Type       { return OrOf(o.Left, o.Right) }
func (l List) Type() Type     { return ListOf(l.Elem) }
func (s Set) Type() Type      { return SetOf(s.Elem) }
func (m Map) Type() Type      { return MapOf(m.Key, m.Value) }
func (m BigMap) Type() Type   { return BigMapOf(m.Key, m.Value) }
func (l Lambda) Type() Type   { return LambdaOf(l.Param, l.Return) }
func (t Ticket) Type() Type   { return TicketOf(t.Content.Type()) }

func (p Pair) Type() Type {
	types := make([]Type, len(p.Elems))
	for i, e := range p.Elems {
		types[i] = e.Type()
	}
	t := PairOf(types...)
	t.Annot = p.Annot
	return t
}

// IsNone reports whether the option is empty
func (o Option) IsNone() bool { return o.Value == nil }

// find returns the index of [key] in sorted [entries] and whether it is
// present.
func find(entries []MapEntry, key Item) (int, bool, error) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := Compare(entries[mid].Key, key)
		if err != nil {
			return 0, false, err
		}
		switch {
		case c == 0:
			return mid, true, nil
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false, nil
}

// Get looks [key] up in the map
func (m Map) Get(key Item) (Item, bool, error) {
	i, ok, err := find(m.Entries, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return m.Entries[i].Value, true, nil
}

// Update returns a copy of [m] with [key] bound to [value], or removed
// when [value] is nil.
func (m Map) Update(key Item, value Item) (Map, error) {
	entries, err := updateEntries(m.Entries, key, value, false)
	if err != nil {
		return Map{}, err
	}
	m.Entries = entries
	return m, nil
}

// updateEntries copies [entries] with the binding of [key] replaced.
// When [keepRemoval] is set a nil value is recorded instead of dropping
// the key.
func updateEntries(entries []MapEntry, key Item, value Item, keepRemoval bool) ([]MapEntry, error) {
	i, ok, err := find(entries, key)
	if err != nil {
		return nil, err
	}
	out := make([]MapEntry, 0, len(entries)+1)
	out = append(out, entries[:i]...)
	if value != nil || keepRemoval {
		out = append(out, MapEntry{Key: key, Value: value})
	}
	if ok {
		i++
	}
	out = append(out, entries[i:]...)
	return out, nil
}

// Contains reports whether [v] is a member of the set
func (s Set) Contains(v Item) (bool, error) {
	_, ok, err := findItem(s.Items, v)
	return ok, err
}

// Update returns a copy of [s] with [v] added or removed
func (s Set) Update(v Item, present bool) (Set, error) {
	i, ok, err := findItem(s.Items, v)
	if err != nil {
		return Set{}, err
	}
	if ok == present {
		return s, nil
	}
	items := make([]Item, 0, len(s.Items)+1)
	items = append(items, s.Items[:i]...)
	if present {
		items = append(items, v)
	} else {
		i++
	}
	items = append(items, s.Items[i:]...)
	s.Items = items
	return s, nil
}

func findItem(items []Item, v Item) (int, bool, error) {
	lo, hi := 0, len(items)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := Compare(items[mid], v)
		if err != nil {
			return 0, false, err
		}
		switch {
		case c == 0:
			return mid, true, nil
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false, nil
}
