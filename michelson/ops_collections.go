// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
)

func cons(x, v Item) (Item, error) {
	l, ok := v.(List)
	if !ok {
		return nil, mismatch("list", v)
	}
	if !x.Type().Equal(l.Elem) {
		return nil, mismatch(l.Elem.String(), x)
	}
	items := make([]Item, 0, len(l.Items)+1)
	items = append(items, x)
	return List{Elem: l.Elem, Items: append(items, l.Items...)}, nil
}

func checkKey(key Item, t Type) error {
	if !key.Type().Equal(t) {
		return mismatch(t.String(), key)
	}
	return nil
}

// lookup finds [key] in a map or big map, reading big map entries through
// to the global context.
func lookup(coll, key Item, e *env) (Item, bool, Type, error) {
	switch m := coll.(type) {
	case Map:
		if err := checkKey(key, m.Key); err != nil {
			return nil, false, Type{}, err
		}
		v, ok, err := m.Get(key)
		return v, ok, m.Value, err
	case BigMap:
		if err := checkKey(key, m.Key); err != nil {
			return nil, false, Type{}, err
		}
		v, ok, err := bigMapGet(m, key, e.gctx)
		return v, ok, m.Value, err
	}
	return nil, false, Type{}, mismatch("map or big_map", coll)
}

func bigMapGet(m BigMap, key Item, gctx GlobalContext) (Item, bool, error) {
	i, ok, err := find(m.Overlay, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		v := m.Overlay[i].Value
		return v, v != nil, nil
	}
	if m.ID == nil {
		return nil, false, nil
	}
	hash, err := bigMapKeyHash(key)
	if err != nil {
		return nil, false, err
	}
	raw, found, err := gctx.GetBigMapEntry(m.ID, hash)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read big map %s: %w", m.ID, err)
	}
	if !found {
		return nil, false, nil
	}
	v, err := unpackAs(raw, m.Value)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode entry of big map %s: %w", m.ID, err)
	}
	return v, true, nil
}

// bigMapKeyHash returns the digest under which a big map key is stored
func bigMapKeyHash(key Item) ([]byte, error) {
	packed, err := packItem(key)
	if err != nil {
		return nil, err
	}
	_, digest := ScriptExprHash(packed)
	return digest[:], nil
}

func execMem(s *Stack, e *env) error {
	return binary(s, func(key, coll Item) (Item, error) {
		if set, ok := coll.(Set); ok {
			if err := checkKey(key, set.Elem); err != nil {
				return nil, err
			}
			found, err := set.Contains(key)
			return Bool(found), err
		}
		_, found, _, err := lookup(coll, key, e)
		return Bool(found), err
	})
}

func execGet(s *Stack, e *env) error {
	return binary(s, func(key, coll Item) (Item, error) {
		v, found, t, err := lookup(coll, key, e)
		if err != nil {
			return nil, err
		}
		if !found {
			return NewNone(t), nil
		}
		return Option{Elem: t, Value: v}, nil
	})
}

// update binds [key] in [coll] according to [val]: a bool for sets, an
// option for maps and big maps.
func update(key, val, coll Item) (Item, error) {
	switch c := coll.(type) {
	case Set:
		if err := checkKey(key, c.Elem); err != nil {
			return nil, err
		}
		present, ok := val.(Bool)
		if !ok {
			return nil, mismatch("bool", val)
		}
		return c.Update(key, bool(present))
	case Map:
		if err := checkKey(key, c.Key); err != nil {
			return nil, err
		}
		o, err := optionOf(val, c.Value)
		if err != nil {
			return nil, err
		}
		return c.Update(key, o.Value)
	case BigMap:
		if err := checkKey(key, c.Key); err != nil {
			return nil, err
		}
		o, err := optionOf(val, c.Value)
		if err != nil {
			return nil, err
		}
		overlay, err := updateEntries(c.Overlay, key, o.Value, c.ID != nil)
		if err != nil {
			return nil, err
		}
		c.Overlay = overlay
		return c, nil
	}
	return nil, mismatch("set, map or big_map", coll)
}

func optionOf(v Item, elem Type) (Option, error) {
	o, ok := v.(Option)
	if !ok || !o.Elem.Equal(elem) {
		return Option{}, mismatch(OptionOf(elem).String(), v)
	}
	return o, nil
}

func execUpdate(s *Stack) error {
	return ternary(s, update)
}

func execGetAndUpdate(s *Stack, e *env) error {
	items, err := s.popN(3)
	if err != nil {
		return err
	}
	key, val, coll := items[0], items[1], items[2]
	old, found, t, err := lookup(coll, key, e)
	if err != nil {
		return err
	}
	updated, err := update(key, val, coll)
	if err != nil {
		return err
	}
	s.Push(updated)
	if found {
		s.Push(Option{Elem: t, Value: old})
	} else {
		s.Push(NewNone(t))
	}
	return nil
}

func size(v Item) (Item, error) {
	var n int
	switch x := v.(type) {
	case String:
		n = len(x)
	case Bytes:
		n = len(x)
	case List:
		n = len(x.Items)
	case Set:
		n = len(x.Items)
	case Map:
		n = len(x.Entries)
	default:
		return nil, mismatch("string, bytes, list, set or map", v)
	}
	return NewNat(uint64(n)), nil
}

func execConcat(s *Stack) error {
	top, err := s.Top()
	if err != nil {
		return err
	}
	l, ok := top.(List)
	if !ok {
		return binary(s, concatPair)
	}
	_, _ = s.Pop()
	switch l.Elem.Code {
	case TString:
		var sb strings.Builder
		for _, item := range l.Items {
			str, ok := item.(String)
			if !ok {
				return mismatch("string", item)
			}
			sb.WriteString(string(str))
		}
		s.Push(String(sb.String()))
	case TBytes:
		var buf bytes.Buffer
		for _, item := range l.Items {
			b, ok := item.(Bytes)
			if !ok {
				return mismatch("bytes", item)
			}
			buf.Write(b)
		}
		s.Push(Bytes(buf.Bytes()))
	default:
		return mismatch("list string or list bytes", l)
	}
	return nil
}

func concatPair(a, b Item) (Item, error) {
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		if !ok {
			return nil, mismatch("string", b)
		}
		return x + y, nil
	case Bytes:
		y, ok := b.(Bytes)
		if !ok {
			return nil, mismatch("bytes", b)
		}
		out := make(Bytes, 0, len(x)+len(y))
		return append(append(out, x...), y...), nil
	}
	return nil, mismatch("string, bytes or list", a)
}

func execSlice(s *Stack) error {
	return ternary(s, func(offset, length, v Item) (Item, error) {
		o, ok := offset.(Nat)
		if !ok {
			return nil, mismatch("nat", offset)
		}
		l, ok := length.(Nat)
		if !ok {
			return nil, mismatch("nat", length)
		}
		var n int
		switch x := v.(type) {
		case String:
			n = len(x)
		case Bytes:
			n = len(x)
		default:
			return nil, mismatch("string or bytes", v)
		}
		end := new(big.Int).Add(o.V, l.V)
		if end.Cmp(big.NewInt(int64(n))) > 0 {
			return NewNone(v.Type()), nil
		}
		from, to := int(o.V.Int64()), int(end.Int64())
		switch x := v.(type) {
		case String:
			return NewSome(x[from:to]), nil
		default:
			return NewSome(append(Bytes{}, x.(Bytes)[from:to]...)), nil
		}
	})
}
