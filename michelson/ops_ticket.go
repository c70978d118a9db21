// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"math/big"
)

// ticket mints a ticket owned by the running contract. A zero amount
// yields None.
func ticket(content, amount Item, e *env) (Item, error) {
	n, ok := amount.(Nat)
	if !ok {
		return nil, mismatch("nat", amount)
	}
	if !content.Type().Comparable() {
		return nil, &TypeMismatchError{Expected: "comparable type", Found: content.Type().String()}
	}
	if n.V.Sign() == 0 {
		return NewNone(TicketOf(content.Type())), nil
	}
	return NewSome(Ticket{Ticketer: e.ectx.Self.WithoutEntrypoint(), Content: content, Amount: n.V}), nil
}

func execReadTicket(s *Stack) error {
	v, err := s.Top()
	if err != nil {
		return err
	}
	t, ok := v.(Ticket)
	if !ok {
		return mismatch("ticket", v)
	}
	s.Push(NewPair(t.Ticketer, t.Content, Nat{V: t.Amount}))
	return nil
}

// splitTicket divides a ticket in two parts whose amounts must add up to
// the original one.
func splitTicket(v, amounts Item) (Item, error) {
	t, ok := v.(Ticket)
	if !ok {
		return nil, mismatch("ticket", v)
	}
	p, ok := amounts.(Pair)
	if !ok || len(p.Elems) != 2 {
		return nil, mismatch("pair nat nat", amounts)
	}
	a, okA := p.Elems[0].(Nat)
	b, okB := p.Elems[1].(Nat)
	if !okA || !okB {
		return nil, mismatch("pair nat nat", amounts)
	}
	none := NewNone(PairOf(t.Type(), t.Type()))
	if a.V.Sign() == 0 || b.V.Sign() == 0 || new(big.Int).Add(a.V, b.V).Cmp(t.Amount) != 0 {
		return none, nil
	}
	left, right := t, t
	left.Amount, right.Amount = a.V, b.V
	return NewSome(NewPair(left, right)), nil
}

// joinTickets merges two tickets with the same ticketer and content
func joinTickets(v Item) (Item, error) {
	p, ok := v.(Pair)
	if !ok || len(p.Elems) != 2 {
		return nil, mismatch("pair ticket ticket", v)
	}
	a, okA := p.Elems[0].(Ticket)
	b, okB := p.Elems[1].(Ticket)
	if !okA || !okB || !a.Type().Equal(b.Type()) {
		return nil, mismatch("pair ticket ticket", v)
	}
	if a.Ticketer != b.Ticketer {
		return NewNone(a.Type()), nil
	}
	if c, err := Compare(a.Content, b.Content); err != nil || c != 0 {
		return NewNone(a.Type()), err
	}
	joined := a
	joined.Amount = new(big.Int).Add(a.Amount, b.Amount)
	return NewSome(joined), nil
}
