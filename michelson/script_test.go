// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/micheline"
)

const registryScript = `{
	parameter (or (pair %put string int) (string %remove)) ;
	storage (big_map string int) ;
	code { UNPAIR ;
	       IF_LEFT { UNPAIR ; DIP { SOME } ; UPDATE } { DIP { NONE int } ; UPDATE } ;
	       NIL operation ;
	       PAIR } }`

func TestParseScript(t *testing.T) {
	assert := assert.New(t)

	script, err := ParseScript(micheline.MustParse(registryScript))
	require.NoError(t, err)
	assert.Equal("big_map string int", script.Storage.String())
	assert.Len(script.Code, 4)

	_, err = ParseScript(micheline.MustParse("{ parameter unit ; storage unit }"))
	var missing *MissingScriptFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal("code", missing.Prim)
}

func TestRunScriptBigMap(t *testing.T) {
	assert := assert.New(t)

	script, err := ParseScript(micheline.MustParse(registryScript))
	require.NoError(t, err)
	gctx := newMemoryContext()
	ectx := testContext()

	storage := data(t, "{}", "big_map string int")
	put := func(k string, v int64) Item {
		return NewLeft(NewPair(String(k), NewInt(v)), StringType)
	}

	ops, storage, err := RunScript(script, put("a", 1), storage, gctx, ectx)
	require.NoError(t, err)
	assert.Empty(ops.Items)
	bm := storage.(BigMap)
	require.NotNil(t, bm.ID)
	assert.Empty(bm.Overlay)
	assert.Len(gctx.bigMaps, 1)

	_, storage, err = RunScript(script, put("b", 2), storage, gctx, ectx)
	require.NoError(t, err)
	assert.Equal(bm.ID, storage.(BigMap).ID)
	assert.Len(gctx.bigMaps, 2)

	_, storage, err = RunScript(script, NewRight(script.Parameter.Args[0], String("a")), storage, gctx, ectx)
	require.NoError(t, err)
	assert.Len(gctx.bigMaps, 1)

	// reads go through to the stored entries
	s := NewStack(String("b"), storage)
	require.NoError(t, Evaluate(MustParseInstructions("{ GET }"), s, gctx, ectx))
	requireStack(t, s, [2]string{"option int", "Some 2"})

	s = NewStack(String("a"), storage)
	require.NoError(t, Evaluate(MustParseInstructions("{ MEM }"), s, gctx, ectx))
	requireStack(t, s, [2]string{"bool", "False"})

	// pending updates shadow stored entries
	s = NewStack(storage)
	code := `{ PUSH (option int) None ; PUSH string "b" ; UPDATE ; PUSH string "b" ; MEM }`
	require.NoError(t, Evaluate(MustParseInstructions(code), s, gctx, ectx))
	top, _ := s.Top()
	assert.Equal(Bool(false), top)
	assert.Len(gctx.bigMaps, 1)
}

func TestRunScriptBadReturn(t *testing.T) {
	script, err := ParseScript(micheline.MustParse("{ parameter unit ; storage int ; code { CDR } }"))
	require.NoError(t, err)
	_, _, err = RunScript(script, Unit{}, NewInt(1), newMemoryContext(), testContext())
	require.ErrorIs(t, err, ErrBadReturn)

	script, err = ParseScript(micheline.MustParse(`{ parameter unit ; storage int ; code { DROP ; PUSH string "x" ; NIL operation ; PAIR } }`))
	require.NoError(t, err)
	_, _, err = RunScript(script, Unit{}, NewInt(1), newMemoryContext(), testContext())
	require.ErrorIs(t, err, ErrBadReturn)
}

func TestRunScriptSelf(t *testing.T) {
	script, err := ParseScript(micheline.MustParse(`{ parameter (or (nat %a) (unit %b)) ; storage address ; code { DROP ; SELF %b ; ADDRESS ; NIL operation ; PAIR } }`))
	require.NoError(t, err)
	ectx := testContext()
	_, storage, err := RunScript(script, NewRight(NatType, Unit{}), MustParseAddress(testSender), newMemoryContext(), ectx)
	require.NoError(t, err)
	require.Equal(t, testContract+"%b", storage.(Address).String())
}
