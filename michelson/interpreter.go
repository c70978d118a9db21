// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

// env is what a run borrows besides its stack
type env struct {
	gctx GlobalContext
	ectx *ExecutionContext
}

// Evaluate runs [code] over [stack]. On success the stack holds the
// result. On failure the error is returned as is and both the stack and
// [gctx] are left in an intermediate state that the caller must discard.
func Evaluate(code []Instruction, stack *Stack, gctx GlobalContext, ectx *ExecutionContext) error {
	return evaluate(code, stack, &env{gctx: gctx, ectx: ectx})
}

func evaluate(code []Instruction, s *Stack, e *env) error {
	for i := range code {
		if err := step(&code[i], s, e); err != nil {
			return err
		}
	}
	return nil
}

func step(in *Instruction, s *Stack, e *env) error {
	switch in.Op {
	case OpSeq:
		return evaluate(in.Body, s, e)
	case OpUnsupported:
		return &InstructionUnsupportedError{Instruction: in.Prim}

	case OpPush:
		s.Push(in.Value)
		return nil
	case OpDrop:
		return execDrop(in, s)
	case OpDup:
		return execDup(in, s)
	case OpSwap:
		return execSwap(s)
	case OpDig:
		return execDig(in, s)
	case OpDug:
		return execDug(in, s)
	case OpDip:
		return execDip(in, s, e)
	case OpUnit:
		s.Push(Unit{})
		return nil
	case OpNever:
		v, err := s.Pop()
		if err != nil {
			return err
		}
		return mismatch("never", v)
	case OpFailwith:
		v, err := s.Pop()
		if err != nil {
			return err
		}
		return &ScriptFailedError{With: v}

	case OpAdd:
		return binary(s, add)
	case OpSub:
		return binary(s, sub)
	case OpSubMutez:
		return binary(s, subMutez)
	case OpMul:
		return binary(s, mul)
	case OpEdiv:
		return binary(s, ediv)
	case OpNeg:
		return unary(s, neg)
	case OpAbs:
		return unary(s, abs)
	case OpIsNat:
		return unary(s, isNat)
	case OpInt:
		return unary(s, toInt)
	case OpAnd:
		return binary(s, and)
	case OpOr:
		return binary(s, or)
	case OpXor:
		return binary(s, xor)
	case OpNot:
		return unary(s, not)
	case OpLsl:
		return binary(s, lsl)
	case OpLsr:
		return binary(s, lsr)

	case OpCompare:
		return binary(s, compare)
	case OpEq:
		return unary(s, relation(func(c int) bool { return c == 0 }))
	case OpNeq:
		return unary(s, relation(func(c int) bool { return c != 0 }))
	case OpLt:
		return unary(s, relation(func(c int) bool { return c < 0 }))
	case OpLe:
		return unary(s, relation(func(c int) bool { return c <= 0 }))
	case OpGt:
		return unary(s, relation(func(c int) bool { return c > 0 }))
	case OpGe:
		return unary(s, relation(func(c int) bool { return c >= 0 }))

	case OpPair:
		return execPair(in, s)
	case OpUnpair:
		return execUnpair(in, s)
	case OpCar:
		return unary(s, car)
	case OpCdr:
		return unary(s, cdr)
	case OpLeft:
		return unary(s, func(v Item) (Item, error) { return NewLeft(v, in.Type), nil })
	case OpRight:
		return unary(s, func(v Item) (Item, error) { return NewRight(in.Type, v), nil })
	case OpSome:
		return unary(s, func(v Item) (Item, error) { return NewSome(v), nil })
	case OpNone:
		s.Push(NewNone(in.Type))
		return nil
	case OpIf:
		return execIf(in, s, e)
	case OpIfNone:
		return execIfNone(in, s, e)
	case OpIfLeft:
		return execIfLeft(in, s, e)
	case OpIfCons:
		return execIfCons(in, s, e)

	case OpNil:
		s.Push(NewList(in.Type))
		return nil
	case OpCons:
		return binary(s, cons)
	case OpEmptySet:
		s.Push(Set{Elem: in.Type, Items: []Item{}})
		return nil
	case OpEmptyMap:
		s.Push(Map{Key: in.Type, Value: in.Type2, Entries: []MapEntry{}})
		return nil
	case OpEmptyBigMap:
		s.Push(BigMap{Key: in.Type, Value: in.Type2, Overlay: []MapEntry{}})
		return nil
	case OpMem:
		return execMem(s, e)
	case OpGet:
		if in.N >= 0 {
			return unary(s, func(v Item) (Item, error) { return combGet(v, in.N) })
		}
		return execGet(s, e)
	case OpUpdate:
		if in.N >= 0 {
			return binary(s, func(x, v Item) (Item, error) { return combUpdate(v, in.N, x) })
		}
		return execUpdate(s)
	case OpGetAndUpdate:
		return execGetAndUpdate(s, e)
	case OpSize:
		return unary(s, size)
	case OpConcat:
		return execConcat(s)
	case OpSlice:
		return execSlice(s)

	case OpMap:
		return execMap(in, s, e)
	case OpIter:
		return execIter(in, s, e)
	case OpLoop:
		return execLoop(in, s, e)
	case OpLoopLeft:
		return execLoopLeft(in, s, e)

	case OpLambda:
		s.Push(in.Value)
		return nil
	case OpExec:
		return execExec(s, e)
	case OpApply:
		return binary(s, apply)

	case OpAmount:
		s.Push(e.ectx.Amount)
		return nil
	case OpBalance:
		return execBalance(s, e)
	case OpNow:
		s.Push(Timestamp{V: e.ectx.Now})
		return nil
	case OpSelf:
		return execSelf(in, s, e)
	case OpSelfAddress:
		s.Push(e.ectx.Self)
		return nil
	case OpSender:
		s.Push(e.ectx.Sender)
		return nil
	case OpSource:
		s.Push(e.ectx.Source)
		return nil
	case OpChainID:
		s.Push(e.ectx.ChainID)
		return nil
	case OpLevel:
		s.Push(Nat{V: e.ectx.Level})
		return nil
	case OpAddress:
		return unary(s, address)
	case OpContract:
		return unary(s, func(v Item) (Item, error) { return contract(in, v, e) })
	case OpImplicitAccount:
		return unary(s, implicitAccount)

	case OpPack:
		return unary(s, pack)
	case OpUnpack:
		return unary(s, func(v Item) (Item, error) { return unpack(in.Type, v) })

	case OpHashKey:
		return unary(s, hashKey)
	case OpBlake2b:
		return unary(s, digest(blake2b256))
	case OpSha256:
		return unary(s, digest(sha256Sum))
	case OpSha512:
		return unary(s, digest(sha512Sum))
	case OpKeccak:
		return unary(s, digest(keccak256))
	case OpSha3:
		return unary(s, digest(sha3256))
	case OpCheckSignature:
		return execCheckSignature(s)

	case OpTicket:
		return binary(s, func(content, amount Item) (Item, error) { return ticket(content, amount, e) })
	case OpReadTicket:
		return execReadTicket(s)
	case OpSplitTicket:
		return binary(s, splitTicket)
	case OpJoinTickets:
		return unary(s, joinTickets)
	}
	return &InstructionUnsupportedError{Instruction: in.String()}
}

// unary replaces the top item with f(top)
func unary(s *Stack, f func(Item) (Item, error)) error {
	v, err := s.Pop()
	if err != nil {
		return err
	}
	r, err := f(v)
	if err != nil {
		return err
	}
	s.Push(r)
	return nil
}

// binary replaces the two top items with f(top, second)
func binary(s *Stack, f func(Item, Item) (Item, error)) error {
	if err := s.require(2); err != nil {
		return err
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	r, err := f(a, b)
	if err != nil {
		return err
	}
	s.Push(r)
	return nil
}

// ternary replaces the three top items with f(top, second, third)
func ternary(s *Stack, f func(Item, Item, Item) (Item, error)) error {
	items, err := s.popN(3)
	if err != nil {
		return err
	}
	r, err := f(items[0], items[1], items[2])
	if err != nil {
		return err
	}
	s.Push(r)
	return nil
}
