// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackOperations(t *testing.T) {
	assert := assert.New(t)

	s := NewStack(NewInt(1), NewInt(2))
	assert.Equal(2, s.Len())

	s.Push(NewInt(0))
	top, err := s.Top()
	assert.NoError(err)
	assert.Equal(NewInt(0), top)

	assert.NoError(s.PushAt(2, NewInt(9)))
	assert.Equal([]Item{NewInt(0), NewInt(1), NewInt(9), NewInt(2)}, s.Items())

	v, err := s.PopAt(2)
	assert.NoError(err)
	assert.Equal(NewInt(9), v)

	assert.NoError(s.DupAt(2))
	assert.Equal([]Item{NewInt(2), NewInt(0), NewInt(1), NewInt(2)}, s.Items())

	v, err = s.Peek(1)
	assert.NoError(err)
	assert.Equal(NewInt(0), v)
}

func TestStackUnderflow(t *testing.T) {
	assert := assert.New(t)

	for depth := 0; depth < 4; depth++ {
		items := make([]Item, depth)
		for i := range items {
			items[i] = NewInt(int64(i))
		}
		for n := depth; n < depth+3; n++ {
			var bad *BadStackError

			s := NewStack(items...)
			_, err := s.PopAt(n)
			assert.True(errors.As(err, &bad), "pop_at(%d) on depth %d", n, depth)
			assert.Equal(n, bad.Location)

			err = s.DupAt(n)
			assert.True(errors.As(err, &bad), "dup_at(%d) on depth %d", n, depth)

			err = s.PushAt(n, Unit{})
			assert.True(errors.As(err, &bad), "push_at(%d) on depth %d", n, depth)

			assert.Equal(depth, s.Len())
		}
	}

	s := NewStack()
	_, err := s.Pop()
	assert.Error(err)
	_, err = s.Top()
	assert.Error(err)
}
