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

var roundTripCases = []struct {
	ty, literal string
}{
	{"int", "-17"},
	{"nat", "42"},
	{"mutez", "9223372036854775807"},
	{"bool", "True"},
	{"string", `"hello"`},
	{"bytes", "0xdeadbeef"},
	{"timestamp", `"2019-09-26T10:59:51Z"`},
	{"timestamp", "-1000000000000000"},
	{"unit", "Unit"},
	{"key", `"edpkuBknW28nW72KG6RoHtYW7p12T6GKc7nAbwYX5m8Wd9sDVC9yav"`},
	{"key_hash", `"tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"`},
	{"address", `"KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi%entry"`},
	{"chain_id", `"NetXdQprcVkpaWU"`},
	{"contract unit", `"tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN"`},
	{"option int", "None"},
	{"option (option nat)", "Some (Some 3)"},
	{"or int string", `Right "x"`},
	{"pair int string", `Pair 5 "Hello"`},
	{"pair int nat string", `Pair -1 2 "three"`},
	{"pair int (pair %p nat string)", `Pair -1 (Pair 2 "three")`},
	{"list (pair int bool)", "{ Pair 1 True ; Pair 2 False }"},
	{"set string", `{ "a" ; "b" }`},
	{"map int (option bytes)", "{ Elt 1 None ; Elt 2 (Some 0x00) }"},
	{"big_map int int", "{ Elt 1 2 }"},
	{"big_map int int", "7"},
	{"lambda int int", "{ PUSH int 1 ; ADD }"},
	{"ticket nat", `Pair "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" 7 3`},
}

func TestRoundTrip(t *testing.T) {
	for _, c := range roundTripCases {
		t.Run(c.ty+" "+c.literal, func(t *testing.T) {
			ty := MustParseType(c.ty)
			v, err := FromData(micheline.MustParse(c.literal), ty)
			require.NoError(t, err)
			require.True(t, v.Type().Equal(ty), "type %s", v.Type())

			back, err := FromData(IntoData(v), ty)
			require.NoError(t, err)
			require.True(t, Equal(v, back))

			if packable(ty) {
				back, err = FromData(IntoOptimizedData(v), ty)
				require.NoError(t, err)
				require.True(t, Equal(v, back))
			}
		})
	}
}

func TestFromDataMismatch(t *testing.T) {
	tests := []struct {
		ty, literal string
	}{
		{"int", `"1"`},
		{"nat", "-1"},
		{"bool", "Unit"},
		{"option int", "Some"},
		{"pair int int", "Pair 1"},
		{"pair int int", `Pair 1 "a"`},
		{"list int", "1"},
		{"map int int", "{ 1 }"},
		{"address", `"tz1notanaddress"`},
		{"lambda int int", "Unit"},
		{"set int", "{ 1 ; 1 }"},
	}
	for _, test := range tests {
		t.Run(test.ty+" "+test.literal, func(t *testing.T) {
			_, err := FromData(micheline.MustParse(test.literal), MustParseType(test.ty))
			var mismatchErr *TypeMismatchError
			require.True(t, errors.As(err, &mismatchErr), "got %v", err)
		})
	}
}

func TestFromDataMutezCeiling(t *testing.T) {
	_, err := FromData(micheline.MustParse("9223372036854775808"), MutezType)
	require.ErrorIs(t, err, ErrMutezOverflow)
}

func TestFromDataSortsCollections(t *testing.T) {
	assert := assert.New(t)

	v, err := FromData(micheline.MustParse("{ Elt 3 True ; Elt 1 False }"), MustParseType("map nat bool"))
	require.NoError(t, err)
	assert.Equal("{ Elt 1 False ; Elt 3 True }", IntoData(v).String())

	v, err = FromData(micheline.MustParse("{ 9 ; -2 ; 4 }"), MustParseType("set int"))
	require.NoError(t, err)
	assert.Equal("{ -2 ; 4 ; 9 }", IntoData(v).String())

	_, err = FromData(micheline.MustParse("{ Elt 1 True ; Elt 1 False }"), MustParseType("map nat bool"))
	assert.Error(err)
}

func TestPairLiteralShapes(t *testing.T) {
	assert := assert.New(t)
	ty := MustParseType("pair int nat string")

	flat, err := FromData(micheline.MustParse(`Pair 1 2 "x"`), ty)
	require.NoError(t, err)
	nested, err := FromData(micheline.MustParse(`Pair 1 (Pair 2 "x")`), ty)
	require.NoError(t, err)
	seq, err := FromData(micheline.MustParse(`{ 1 ; 2 ; "x" }`), ty)
	require.NoError(t, err)

	assert.True(Equal(flat, nested))
	assert.True(Equal(flat, seq))
	assert.Len(flat.(Pair).Elems, 3)
	assert.Equal(`Pair 1 2 "x"`, IntoData(flat).String())
	assert.Equal(`Pair 1 (Pair 2 "x")`, IntoOptimizedData(flat).String())
}

func TestReadableForms(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(`"1970-01-01T00:01:40Z"`, IntoData(NewTimestamp(100)).String())
	assert.Equal("100", IntoOptimizedData(NewTimestamp(100)).String())

	addr := MustParseAddress(testSender)
	assert.Equal(`"`+testSender+`"`, IntoData(addr).String())
	assert.Equal("0x000002298c03ed7d454a101eb7022bc95f7e5f41ac78", IntoOptimizedData(addr).String())
}
