// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"bytes"
	"strings"
)

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

// Compare orders two comparable items of the same type, returning -1, 0
// or 1.
func Compare(a, b Item) (int, error) {
	switch x := a.(type) {
	case Int:
		if y, ok := b.(Int); ok {
			return x.V.Cmp(y.V), nil
		}
	case Nat:
		if y, ok := b.(Nat); ok {
			return x.V.Cmp(y.V), nil
		}
	case Timestamp:
		if y, ok := b.(Timestamp); ok {
			return x.V.Cmp(y.V), nil
		}
	case Mutez:
		if y, ok := b.(Mutez); ok {
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
	case Bool:
		if y, ok := b.(Bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !bool(x):
				return -1, nil
			}
			return 1, nil
		}
	case String:
		if y, ok := b.(String); ok {
			return strings.Compare(string(x), string(y)), nil
		}
	case Bytes:
		if y, ok := b.(Bytes); ok {
			return bytes.Compare(x, y), nil
		}
	case Signature:
		if y, ok := b.(Signature); ok {
			return bytes.Compare(x, y), nil
		}
	case Key:
		if y, ok := b.(Key); ok {
			return bytes.Compare(x.Bytes(), y.Bytes()), nil
		}
	case KeyHash:
		if y, ok := b.(KeyHash); ok {
			return bytes.Compare(x.Bytes(), y.Bytes()), nil
		}
	case ChainID:
		if y, ok := b.(ChainID); ok {
			return bytes.Compare(x[:], y[:]), nil
		}
	case Address:
		if y, ok := b.(Address); ok {
			if c := bytes.Compare(x.Raw[:], y.Raw[:]); c != 0 {
				return c, nil
			}
			return strings.Compare(x.Entrypoint, y.Entrypoint), nil
		}
	case Unit:
		if _, ok := b.(Unit); ok {
			return 0, nil
		}
	case Option:
		if y, ok := b.(Option); ok && x.Elem.Equal(y.Elem) {
			switch {
			case x.IsNone() && y.IsNone():
				return 0, nil
			case x.IsNone():
				return -1, nil
			case y.IsNone():
				return 1, nil
			}
			return Compare(x.Value, y.Value)
		}
	case Or:
		if y, ok := b.(Or); ok && x.Type().Equal(y.Type()) {
			switch {
			case x.IsRight == y.IsRight:
				return Compare(x.Value, y.Value)
			case x.IsRight:
				return 1, nil
			}
			return -1, nil
		}
	case Pair:
		if y, ok := b.(Pair); ok && x.Type().Equal(y.Type()) {
			for i := range x.Elems {
				c, err := Compare(x.Elems[i], y.Elems[i])
				if err != nil || c != 0 {
					return c, err
				}
			}
			return 0, nil
		}
	default:
		return 0, &TypeMismatchError{Expected: "comparable type", Found: a.Type().String()}
	}
	return 0, &TypeMismatchError{Expected: a.Type().String(), Found: b.Type().String()}
}

// Equal reports whether two items have the same type and value.
func Equal(a, b Item) bool {
	if !a.Type().Equal(b.Type()) {
		return false
	}
	if x, ok := a.(BigMap); ok {
		y := b.(BigMap)
		if (x.ID == nil) != (y.ID == nil) || (x.ID != nil && x.ID.Cmp(y.ID) != 0) {
			return false
		}
		if len(x.Overlay) != len(y.Overlay) {
			return false
		}
		for i := range x.Overlay {
			ex, ey := x.Overlay[i], y.Overlay[i]
			if !Equal(ex.Key, ey.Key) || (ex.Value == nil) != (ey.Value == nil) {
				return false
			}
			if ex.Value != nil && !Equal(ex.Value, ey.Value) {
				return false
			}
		}
		return true
	}
	return IntoData(a).Equal(IntoData(b))
}
