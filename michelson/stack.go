// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

// Stack is the operand stack of one run. Depth 0 is the top.
type Stack struct {
	// items[len(items)-1] is the top
	items []Item
}

// NewStack returns a stack holding [items], the first one on top
func NewStack(items ...Item) *Stack {
	s := &Stack{items: make([]Item, len(items))}
	for i, item := range items {
		s.items[len(items)-1-i] = item
	}
	return s
}

// Len returns the depth of the stack
func (s *Stack) Len() int { return len(s.items) }

// Items returns the stack content, top first
func (s *Stack) Items() []Item {
	out := make([]Item, len(s.items))
	for i, item := range s.items {
		out[len(s.items)-1-i] = item
	}
	return out
}

func (s *Stack) index(n int) (int, error) {
	if n < 0 || n >= len(s.items) {
		return 0, &BadStackError{Location: n}
	}
	return len(s.items) - 1 - n, nil
}

// Push places [v] on top
func (s *Stack) Push(v Item) { s.items = append(s.items, v) }

// Pop removes the top item
func (s *Stack) Pop() (Item, error) { return s.PopAt(0) }

// Top returns the top item without removing it
func (s *Stack) Top() (Item, error) {
	i, err := s.index(0)
	if err != nil {
		return nil, err
	}
	return s.items[i], nil
}

// Peek returns the item at depth [n] without removing it
func (s *Stack) Peek(n int) (Item, error) {
	i, err := s.index(n)
	if err != nil {
		return nil, err
	}
	return s.items[i], nil
}

// PopAt removes and returns the item at depth [n]
func (s *Stack) PopAt(n int) (Item, error) {
	i, err := s.index(n)
	if err != nil {
		return nil, err
	}
	v := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// DupAt pushes a copy of the item at depth [n]
func (s *Stack) DupAt(n int) error {
	i, err := s.index(n)
	if err != nil {
		return err
	}
	s.Push(s.items[i])
	return nil
}

// PushAt inserts [v] so that it ends up at depth [n]. The current item at
// depth [n] and everything above it stay above [v].
func (s *Stack) PushAt(n int, v Item) error {
	if _, err := s.index(n); err != nil {
		return err
	}
	s.insert(n, v)
	return nil
}

// insert places [v] at depth [n] where n may equal Len, the bottom
func (s *Stack) insert(n int, v Item) {
	i := len(s.items) - n
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = v
}

// popN removes the top [n] items and returns them, top first
func (s *Stack) popN(n int) ([]Item, error) {
	if n > len(s.items) {
		return nil, &BadStackError{Location: n - 1}
	}
	out := make([]Item, n)
	for i := 0; i < n; i++ {
		out[i] = s.items[len(s.items)-1-i]
	}
	s.items = s.items[:len(s.items)-n]
	return out, nil
}

// require fails unless at least [n] items are on the stack
func (s *Stack) require(n int) error {
	if n > len(s.items) {
		return &BadStackError{Location: n - 1}
	}
	return nil
}
