// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package micheline

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAtoms(t *testing.T) {
	assert := assert.New(t)

	n, err := Parse("-42")
	assert.NoError(err)
	assert.Equal(KindInt, n.Kind)
	assert.Equal(int64(-42), n.Int.Int64())

	n, err = Parse(`"a \"quoted\" \\ string\n"`)
	assert.NoError(err)
	assert.Equal("a \"quoted\" \\ string\n", n.Str)

	n, err = Parse("0x00ff")
	assert.NoError(err)
	assert.Equal([]byte{0x00, 0xff}, n.Bytes)

	n, err = Parse("0x")
	assert.NoError(err)
	assert.Equal(KindBytes, n.Kind)
	assert.Empty(n.Bytes)
}

func TestParseApplications(t *testing.T) {
	assert := assert.New(t)

	n, err := Parse("pair %p (list :l int) (option nat)")
	require.NoError(t, err)
	assert.Equal("pair", n.Prim)
	assert.Equal([]string{"%p"}, n.Annots)
	require.Len(t, n.Args, 2)
	assert.True(n.Args[0].IsPrim("list"))
	assert.Equal([]string{":l"}, n.Args[0].Annots)
	assert.True(n.Args[1].Args[0].IsPrim("nat"))

	n, err = Parse("{ DUP ; PUSH int 1 ; ADD ; IF_NONE { UNIT ; FAILWITH } {} ; }")
	require.NoError(t, err)
	assert.Equal(KindSeq, n.Kind)
	require.Len(t, n.Args, 4)
	assert.True(n.Args[1].IsPrim("PUSH"))
	assert.Len(n.Args[1].Args, 2)
	assert.Len(n.Args[3].Args, 2)
	assert.Len(n.Args[3].Args[1].Args, 0)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"{ DUP",
		"(pair int",
		`"unterminated`,
		"0xabc",
		"{ DUP DROP ; } }",
		"$",
		`"bad \q escape"`,
	} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}

func TestParseSeqTopLevel(t *testing.T) {
	items, err := ParseSeq(`
		# comment
		code { ADD } ;
		input { Stack_elt int 1 ; Stack_elt int 2 } ;
		output { Stack_elt int 3 }
	`)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].IsPrim("code"))
	assert.Len(t, items[1].Args[0].Args, 2)
}

func TestPrintRoundTrip(t *testing.T) {
	for _, src := range []string{
		`{ PUSH (pair int string) (Pair 5 "Hello") ; DROP }`,
		`Pair (Some 0x01ab) (Left "x\ny") {}`,
		`{ Elt 1 "one" ; Elt 2 "two" }`,
		`lambda %f int (pair nat nat)`,
		`-12345678901234567890123`,
	} {
		n, err := Parse(src)
		require.NoError(t, err, src)
		m, err := Parse(n.String())
		require.NoError(t, err, n.String())
		assert.True(t, n.Equal(m), src)
	}
}

func TestBinaryVectors(t *testing.T) {
	tests := []struct {
		src string
		hex string
	}{
		{"1", "0001"},
		{"-1", "0041"},
		{"64", "008001"},
		{"0", "0000"},
		{`"foo"`, "0100000003666f6f"},
		{"0x00ff", "0a0000000200ff"},
		{"Unit", "030b"},
		{"Some 3", "05090003"},
		{"Pair 1 2", "070700010002"},
		{"{}", "0200000000"},
		{"{ 1 ; 2 }", "020000000400010002"},
		{"Pair 1 2 3", "09070000000600010002000300000000"},
		{"int %x", "045b000000022578"},
	}
	for _, test := range tests {
		n, err := Parse(test.src)
		require.NoError(t, err, test.src)
		b, err := Encode(n)
		require.NoError(t, err, test.src)
		assert.Equal(t, test.hex, hex.EncodeToString(b), test.src)

		back, err := Decode(b)
		require.NoError(t, err, test.src)
		assert.True(t, n.Equal(back), test.src)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, h := range []string{
		"",
		"ff",
		"0080",
		"000180",
		"01000000",
		"03ff",
		"00010001",
	} {
		b, err := hex.DecodeString(h)
		require.NoError(t, err)
		_, err = Decode(b)
		assert.Error(t, err, h)
	}
}

func TestZarithLarge(t *testing.T) {
	v, ok := new(big.Int).SetString("-340282366920938463463374607431768211456", 10)
	require.True(t, ok)
	b, err := Encode(NewBigInt(v))
	require.NoError(t, err)
	n, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(n.Int))
}
