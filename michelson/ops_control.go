// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"github.com/ava-labs/michelsonvm/micheline"
)

// mapBody runs the body of MAP over one element and returns the single
// item it leaves in place of the element.
func mapBody(in *Instruction, s *Stack, e *env, elem Item) (Item, error) {
	depth := s.Len()
	s.Push(elem)
	if err := evaluate(in.Body, s, e); err != nil {
		return nil, err
	}
	if s.Len() != depth+1 {
		return nil, &InvalidArityError{Expected: depth + 1, Found: s.Len()}
	}
	return s.Pop()
}

// iterBody runs the body of ITER over one element, which it must consume
func iterBody(in *Instruction, s *Stack, e *env, elem Item) error {
	depth := s.Len()
	s.Push(elem)
	if err := evaluate(in.Body, s, e); err != nil {
		return err
	}
	if s.Len() != depth {
		return &InvalidArityError{Expected: depth, Found: s.Len()}
	}
	return nil
}

func execMap(in *Instruction, s *Stack, e *env) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	switch c := v.(type) {
	case List:
		out := List{Elem: c.Elem, Items: make([]Item, 0, len(c.Items))}
		for i, item := range c.Items {
			r, err := mapBody(in, s, e, item)
			if err != nil {
				return err
			}
			if i == 0 {
				out.Elem = r.Type()
			} else if !r.Type().Equal(out.Elem) {
				return mismatch(out.Elem.String(), r)
			}
			out.Items = append(out.Items, r)
		}
		s.Push(out)
	case Map:
		out := Map{Key: c.Key, Value: c.Value, Entries: make([]MapEntry, 0, len(c.Entries))}
		for i, entry := range c.Entries {
			r, err := mapBody(in, s, e, NewPair(entry.Key, entry.Value))
			if err != nil {
				return err
			}
			if i == 0 {
				out.Value = r.Type()
			} else if !r.Type().Equal(out.Value) {
				return mismatch(out.Value.String(), r)
			}
			out.Entries = append(out.Entries, MapEntry{Key: entry.Key, Value: r})
		}
		s.Push(out)
	case Option:
		if c.IsNone() {
			s.Push(c)
			return nil
		}
		r, err := mapBody(in, s, e, c.Value)
		if err != nil {
			return err
		}
		s.Push(NewSome(r))
	default:
		return mismatch("list, map or option", v)
	}
	return nil
}

func execIter(in *Instruction, s *Stack, e *env) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	switch c := v.(type) {
	case List:
		for _, item := range c.Items {
			if err := iterBody(in, s, e, item); err != nil {
				return err
			}
		}
	case Set:
		for _, item := range c.Items {
			if err := iterBody(in, s, e, item); err != nil {
				return err
			}
		}
	case Map:
		for _, entry := range c.Entries {
			if err := iterBody(in, s, e, NewPair(entry.Key, entry.Value)); err != nil {
				return err
			}
		}
	default:
		return mismatch("list, set or map", v)
	}
	return nil
}

func execLoop(in *Instruction, s *Stack, e *env) error {
	for {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		b, ok := v.(Bool)
		if !ok {
			return mismatch("bool", v)
		}
		if !b {
			return nil
		}
		if err := evaluate(in.Body, s, e); err != nil {
			return err
		}
	}
}

func execLoopLeft(in *Instruction, s *Stack, e *env) error {
	for {
		v, err := s.Pop()
		if err != nil {
			return err
		}
		o, ok := v.(Or)
		if !ok {
			return mismatch("or", v)
		}
		s.Push(o.Value)
		if o.IsRight {
			return nil
		}
		if err := evaluate(in.Body, s, e); err != nil {
			return err
		}
	}
}

func execExec(s *Stack, e *env) error {
	return binary(s, func(arg, f Item) (Item, error) {
		l, ok := f.(Lambda)
		if !ok {
			return nil, mismatch("lambda", f)
		}
		return callLambda(l, arg, e)
	})
}

// callLambda runs the body of [l] on a fresh stack holding [arg]
func callLambda(l Lambda, arg Item, e *env) (Item, error) {
	if !arg.Type().Equal(l.Param) {
		return nil, mismatch(l.Param.String(), arg)
	}
	code, err := ParseInstructions(l.Code)
	if err != nil {
		return nil, err
	}
	inner := NewStack(arg)
	if err := evaluate(code, inner, e); err != nil {
		return nil, err
	}
	if inner.Len() != 1 {
		return nil, &InvalidArityError{Expected: 1, Found: inner.Len()}
	}
	r, _ := inner.Top()
	if !r.Type().Equal(l.Return) {
		return nil, mismatch(l.Return.String(), r)
	}
	return r, nil
}

// apply partially applies [f] to [arg], the first field of its parameter
func apply(arg, f Item) (Item, error) {
	l, ok := f.(Lambda)
	if !ok {
		return nil, mismatch("lambda", f)
	}
	if l.Param.Code != TPair {
		return nil, &TypeMismatchError{Expected: "lambda taking a pair", Found: l.Type().String()}
	}
	first := l.Param.Args[0]
	if !arg.Type().Equal(first) {
		return nil, mismatch(first.String(), arg)
	}
	code := micheline.NewSeq(
		micheline.NewPrim("PUSH", first.Node(), IntoData(arg)),
		micheline.NewPrim("PAIR"),
		l.Code,
	)
	return Lambda{Param: l.Param.tail(1), Return: l.Return, Code: code}, nil
}
