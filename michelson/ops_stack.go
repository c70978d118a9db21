// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

func execDrop(in *Instruction, s *Stack) error {
	n := in.N
	if n < 0 {
		n = 1
	}
	_, err := s.popN(n)
	return err
}

func execDup(in *Instruction, s *Stack) error {
	n := in.N
	switch {
	case n < 0:
		n = 1
	case n == 0:
		return &InstructionUnsupportedError{Instruction: "DUP 0"}
	}
	return s.DupAt(n - 1)
}

func execSwap(s *Stack) error {
	if err := s.require(2); err != nil {
		return err
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	s.Push(a)
	s.Push(b)
	return nil
}

func execDig(in *Instruction, s *Stack) error {
	v, err := s.PopAt(in.N)
	if err != nil {
		return err
	}
	s.Push(v)
	return nil
}

func execDug(in *Instruction, s *Stack) error {
	if err := s.require(in.N + 1); err != nil {
		return err
	}
	v, _ := s.Pop()
	s.insert(in.N, v)
	return nil
}

// execDip runs the body with the top N items set aside
func execDip(in *Instruction, s *Stack, e *env) error {
	protected, err := s.popN(in.N)
	if err != nil {
		return err
	}
	if err := evaluate(in.Body, s, e); err != nil {
		return err
	}
	for i := len(protected) - 1; i >= 0; i-- {
		s.Push(protected[i])
	}
	return nil
}
