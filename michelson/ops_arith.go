// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"math/big"
)

// maxShift is the largest shift amount LSL and LSR accept
const maxShift = 256

// integer returns the value of an int or nat item and whether it is a nat
func integer(v Item) (*big.Int, bool, bool) {
	switch x := v.(type) {
	case Int:
		return x.V, false, true
	case Nat:
		return x.V, true, true
	}
	return nil, false, false
}

func numeric(v *big.Int, nat bool) Item {
	if nat {
		return Nat{V: v}
	}
	return Int{V: v}
}

func add(a, b Item) (Item, error) {
	switch x := a.(type) {
	case Mutez:
		y, ok := b.(Mutez)
		if !ok {
			return nil, mismatch("mutez", b)
		}
		if y > MaxMutez-x {
			return nil, ErrMutezOverflow
		}
		return x + y, nil
	case Timestamp:
		y, ok := b.(Int)
		if !ok {
			return nil, mismatch("int", b)
		}
		return Timestamp{V: new(big.Int).Add(x.V, y.V)}, nil
	}
	x, xNat, ok := integer(a)
	if !ok {
		return nil, mismatch("int, nat, mutez or timestamp", a)
	}
	if ts, ok := b.(Timestamp); ok && !xNat {
		return Timestamp{V: new(big.Int).Add(x, ts.V)}, nil
	}
	y, yNat, ok := integer(b)
	if !ok {
		return nil, mismatch("int or nat", b)
	}
	return numeric(new(big.Int).Add(x, y), xNat && yNat), nil
}

func sub(a, b Item) (Item, error) {
	switch x := a.(type) {
	case Mutez:
		y, ok := b.(Mutez)
		if !ok {
			return nil, mismatch("mutez", b)
		}
		if y > x {
			return nil, ErrMutezUnderflow
		}
		return x - y, nil
	case Timestamp:
		switch y := b.(type) {
		case Int:
			return Timestamp{V: new(big.Int).Sub(x.V, y.V)}, nil
		case Timestamp:
			return Int{V: new(big.Int).Sub(x.V, y.V)}, nil
		}
		return nil, mismatch("int or timestamp", b)
	}
	x, _, ok := integer(a)
	if !ok {
		return nil, mismatch("int, nat, mutez or timestamp", a)
	}
	y, _, ok := integer(b)
	if !ok {
		return nil, mismatch("int or nat", b)
	}
	return Int{V: new(big.Int).Sub(x, y)}, nil
}

func subMutez(a, b Item) (Item, error) {
	x, ok := a.(Mutez)
	if !ok {
		return nil, mismatch("mutez", a)
	}
	y, ok := b.(Mutez)
	if !ok {
		return nil, mismatch("mutez", b)
	}
	if y > x {
		return NewNone(MutezType), nil
	}
	return NewSome(x - y), nil
}

func mutezProduct(m Mutez, n *big.Int) (Item, error) {
	p := new(big.Int).Mul(big.NewInt(int64(m)), n)
	if p.Cmp(maxMutez) > 0 {
		return nil, ErrMutezOverflow
	}
	return Mutez(p.Int64()), nil
}

func mul(a, b Item) (Item, error) {
	if x, ok := a.(Mutez); ok {
		y, ok := b.(Nat)
		if !ok {
			return nil, mismatch("nat", b)
		}
		return mutezProduct(x, y.V)
	}
	x, xNat, ok := integer(a)
	if !ok {
		return nil, mismatch("int, nat or mutez", a)
	}
	if y, ok := b.(Mutez); ok && xNat {
		return mutezProduct(y, x)
	}
	y, yNat, ok := integer(b)
	if !ok {
		return nil, mismatch("int or nat", b)
	}
	return numeric(new(big.Int).Mul(x, y), xNat && yNat), nil
}

// ediv returns the euclidean quotient and remainder, or None when
// dividing by zero.
func ediv(a, b Item) (Item, error) {
	var (
		x, y         *big.Int
		qType, rType Type
		wrap         func(q, r *big.Int) Pair
	)
	switch ax := a.(type) {
	case Mutez:
		x = big.NewInt(int64(ax))
		switch by := b.(type) {
		case Nat:
			y, qType, rType = by.V, MutezType, MutezType
			wrap = func(q, r *big.Int) Pair { return NewPair(Mutez(q.Int64()), Mutez(r.Int64())) }
		case Mutez:
			y, qType, rType = big.NewInt(int64(by)), NatType, MutezType
			wrap = func(q, r *big.Int) Pair { return NewPair(Nat{V: q}, Mutez(r.Int64())) }
		default:
			return nil, mismatch("nat or mutez", b)
		}
	default:
		var xNat, yNat, ok bool
		if x, xNat, ok = integer(a); !ok {
			return nil, mismatch("int, nat or mutez", a)
		}
		if y, yNat, ok = integer(b); !ok {
			return nil, mismatch("int or nat", b)
		}
		qType, rType = IntType, NatType
		if xNat && yNat {
			qType = NatType
		}
		wrap = func(q, r *big.Int) Pair { return NewPair(numeric(q, xNat && yNat), Nat{V: r}) }
	}
	if y.Sign() == 0 {
		return NewNone(PairOf(qType, rType)), nil
	}
	q, r := new(big.Int).DivMod(x, y, new(big.Int))
	return NewSome(wrap(q, r)), nil
}

func neg(v Item) (Item, error) {
	x, _, ok := integer(v)
	if !ok {
		return nil, mismatch("int or nat", v)
	}
	return Int{V: new(big.Int).Neg(x)}, nil
}

func abs(v Item) (Item, error) {
	x, ok := v.(Int)
	if !ok {
		return nil, mismatch("int", v)
	}
	return Nat{V: new(big.Int).Abs(x.V)}, nil
}

func isNat(v Item) (Item, error) {
	x, ok := v.(Int)
	if !ok {
		return nil, mismatch("int", v)
	}
	if x.V.Sign() < 0 {
		return NewNone(NatType), nil
	}
	return NewSome(Nat{V: x.V}), nil
}

func toInt(v Item) (Item, error) {
	x, ok := v.(Nat)
	if !ok {
		return nil, mismatch("nat", v)
	}
	return Int{V: x.V}, nil
}

func and(a, b Item) (Item, error) {
	if x, ok := a.(Bool); ok {
		y, ok := b.(Bool)
		if !ok {
			return nil, mismatch("bool", b)
		}
		return x && y, nil
	}
	x, _, ok := integer(a)
	if !ok {
		return nil, mismatch("bool, int or nat", a)
	}
	y, ok := b.(Nat)
	if !ok {
		return nil, mismatch("nat", b)
	}
	return Nat{V: new(big.Int).And(x, y.V)}, nil
}

// bitwise applies a boolean or nat operator shared by OR and XOR
func bitwise(a, b Item, onBool func(x, y bool) bool, onNat func(z, x, y *big.Int) *big.Int) (Item, error) {
	switch x := a.(type) {
	case Bool:
		y, ok := b.(Bool)
		if !ok {
			return nil, mismatch("bool", b)
		}
		return Bool(onBool(bool(x), bool(y))), nil
	case Nat:
		y, ok := b.(Nat)
		if !ok {
			return nil, mismatch("nat", b)
		}
		return Nat{V: onNat(new(big.Int), x.V, y.V)}, nil
	}
	return nil, mismatch("bool or nat", a)
}

func or(a, b Item) (Item, error) {
	return bitwise(a, b, func(x, y bool) bool { return x || y }, (*big.Int).Or)
}

func xor(a, b Item) (Item, error) {
	return bitwise(a, b, func(x, y bool) bool { return x != y }, (*big.Int).Xor)
}

func not(v Item) (Item, error) {
	if x, ok := v.(Bool); ok {
		return !x, nil
	}
	x, _, ok := integer(v)
	if !ok {
		return nil, mismatch("bool, int or nat", v)
	}
	return Int{V: new(big.Int).Not(x)}, nil
}

func shiftOperands(a, b Item) (*big.Int, uint, error) {
	x, ok := a.(Nat)
	if !ok {
		return nil, 0, mismatch("nat", a)
	}
	y, ok := b.(Nat)
	if !ok {
		return nil, 0, mismatch("nat", b)
	}
	if y.V.Cmp(big.NewInt(maxShift)) > 0 {
		return nil, 0, ErrGeneralOverflow
	}
	return x.V, uint(y.V.Uint64()), nil
}

func lsl(a, b Item) (Item, error) {
	x, n, err := shiftOperands(a, b)
	if err != nil {
		return nil, err
	}
	return Nat{V: new(big.Int).Lsh(x, n)}, nil
}

func lsr(a, b Item) (Item, error) {
	x, n, err := shiftOperands(a, b)
	if err != nil {
		return nil, err
	}
	return Nat{V: new(big.Int).Rsh(x, n)}, nil
}

func compare(a, b Item) (Item, error) {
	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	return NewInt(int64(sign(c))), nil
}

// relation turns the result of COMPARE into a boolean
func relation(pred func(int) bool) func(Item) (Item, error) {
	return func(v Item) (Item, error) {
		x, ok := v.(Int)
		if !ok {
			return nil, mismatch("int", v)
		}
		return Bool(pred(x.V.Sign())), nil
	}
}
