// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

func execPair(in *Instruction, s *Stack) error {
	n := in.N
	if n < 0 {
		n = 2
	}
	if n < 2 {
		return &InvalidArityError{Expected: 2, Found: n}
	}
	items, err := s.popN(n)
	if err != nil {
		return err
	}
	s.Push(NewPair(items...))
	return nil
}

func execUnpair(in *Instruction, s *Stack) error {
	n := in.N
	if n < 0 {
		n = 2
	}
	if n < 2 {
		return &InvalidArityError{Expected: 2, Found: n}
	}
	v, err := s.Pop()
	if err != nil {
		return err
	}
	fields, err := combFields(v, n)
	if err != nil {
		return err
	}
	for i := len(fields) - 1; i >= 0; i-- {
		s.Push(fields[i])
	}
	return nil
}

// combFields splits a right comb into its first n-1 fields and the rest
func combFields(v Item, n int) ([]Item, error) {
	fields := make([]Item, 0, n)
	for len(fields) < n-1 {
		p, ok := v.(Pair)
		if !ok {
			return nil, mismatch("pair", v)
		}
		fields = append(fields, p.Car())
		v = p.Cdr()
	}
	return append(fields, v), nil
}

func car(v Item) (Item, error) {
	p, ok := v.(Pair)
	if !ok {
		return nil, mismatch("pair", v)
	}
	return p.Car(), nil
}

func cdr(v Item) (Item, error) {
	p, ok := v.(Pair)
	if !ok {
		return nil, mismatch("pair", v)
	}
	return p.Cdr(), nil
}

// combGet reads node [n] of a right comb: 0 is the whole comb, 2k+1 the
// k-th field and 2k the comb following it.
func combGet(v Item, n int) (Item, error) {
	for ; n > 1; n -= 2 {
		p, ok := v.(Pair)
		if !ok {
			return nil, mismatch("pair", v)
		}
		v = p.Cdr()
	}
	if n == 0 {
		return v, nil
	}
	return car(v)
}

// combUpdate replaces node [n] of a right comb with [x]
func combUpdate(v Item, n int, x Item) (Item, error) {
	if n == 0 {
		return x, nil
	}
	p, ok := v.(Pair)
	if !ok {
		return nil, mismatch("pair", v)
	}
	if n == 1 {
		return rebuild(p, x, p.Cdr()), nil
	}
	rest, err := combUpdate(p.Cdr(), n-2, x)
	if err != nil {
		return nil, err
	}
	return rebuild(p, p.Car(), rest), nil
}

func rebuild(p Pair, first, rest Item) Pair {
	r := NewPair(first, rest)
	r.Annot = p.Annot
	return r
}

func execIf(in *Instruction, s *Stack, e *env) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	b, ok := v.(Bool)
	if !ok {
		return mismatch("bool", v)
	}
	if b {
		return evaluate(in.Body, s, e)
	}
	return evaluate(in.Else, s, e)
}

func execIfNone(in *Instruction, s *Stack, e *env) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	o, ok := v.(Option)
	if !ok {
		return mismatch("option", v)
	}
	if o.IsNone() {
		return evaluate(in.Body, s, e)
	}
	s.Push(o.Value)
	return evaluate(in.Else, s, e)
}

func execIfLeft(in *Instruction, s *Stack, e *env) error {
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
		return evaluate(in.Else, s, e)
	}
	return evaluate(in.Body, s, e)
}

func execIfCons(in *Instruction, s *Stack, e *env) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	l, ok := v.(List)
	if !ok {
		return mismatch("list", v)
	}
	if len(l.Items) == 0 {
		return evaluate(in.Else, s, e)
	}
	s.Push(List{Elem: l.Elem, Items: l.Items[1:]})
	s.Push(l.Items[0])
	return evaluate(in.Body, s, e)
}
