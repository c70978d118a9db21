// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tzt

import (
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/michelson"
	"github.com/ava-labs/michelsonvm/state"
)

var passing = map[string]string{
	"add_int": `
		code { ADD } ;
		input { Stack_elt int 5 ; Stack_elt int -3 } ;
		output { Stack_elt int 2 }`,
	"if_none_some": `
		code { IF_NONE { UNIT ; FAILWITH } { PUSH int 1 ; ADD } } ;
		input { Stack_elt (option int) (Some 1) } ;
		output { Stack_elt int 2 }`,
	"failwith_string": `
		code { FAILWITH } ;
		input { Stack_elt string "boom" } ;
		output (Failed "boom")`,
	"failwith_pair": `
		code { FAILWITH } ;
		input { Stack_elt (pair int string) (Pair 1 "a") } ;
		output (Failed (Pair 1 "a"))`,
	"mutez_overflow": `
		code { ADD } ;
		input { Stack_elt mutez 9223372036854775807 ; Stack_elt mutez 1 } ;
		output (MutezOverflow 9223372036854775807 1)`,
	"mutez_underflow": `
		code { SUB } ;
		input { Stack_elt mutez 0 ; Stack_elt mutez 1 } ;
		output (MutezUnderflow 0 1)`,
	"sub_mutez_none": `
		code { SUB_MUTEZ } ;
		input { Stack_elt mutez 0 ; Stack_elt mutez 1 } ;
		output { Stack_elt (option mutez) None }`,
	"lsl_overflow": `
		code { LSL } ;
		input { Stack_elt nat 1 ; Stack_elt nat 257 } ;
		output (GeneralOverflow 1 257)`,
	"amount": `
		code { DROP ; AMOUNT } ;
		input { Stack_elt unit Unit } ;
		output { Stack_elt mutez 10 } ;
		amount 10`,
	"balance": `
		code { BALANCE } ;
		input {} ;
		output { Stack_elt mutez 42 } ;
		balance 42`,
	"now_level": `
		code { NOW ; LEVEL } ;
		input {} ;
		output { Stack_elt nat 7 ; Stack_elt timestamp "2019-09-26T10:59:51Z" } ;
		now "2019-09-26T10:59:51Z" ;
		level 7`,
	"self_address": `
		code { SELF_ADDRESS } ;
		input {} ;
		output { Stack_elt address "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" } ;
		self "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi"`,
	"sender_source": `
		code { SENDER ; SOURCE } ;
		input {} ;
		output { Stack_elt address "tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN" ; Stack_elt address "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx" } ;
		sender "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx" ;
		source "tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN"`,
	"self_parameter": `
		code { SELF ; ADDRESS } ;
		input {} ;
		output { Stack_elt address "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" } ;
		parameter int`,
	"chain_id": `
		code { CHAIN_ID } ;
		input {} ;
		output { Stack_elt chain_id "NetXdQprcVkpaWU" }`,
	"other_contract": `
		code { CONTRACT nat ; IF_NONE { PUSH string "missing" ; FAILWITH } { ADDRESS } } ;
		input { Stack_elt address "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" } ;
		output { Stack_elt address "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" } ;
		self "KT1CSKPf2jeLpMmrgKquN2bCjBTkAcAdRVDy" ;
		other_contracts { Contract "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" nat }`,
	"other_contract_mismatch": `
		code { CONTRACT string } ;
		input { Stack_elt address "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" } ;
		output { Stack_elt (option (contract string)) None } ;
		self "KT1CSKPf2jeLpMmrgKquN2bCjBTkAcAdRVDy" ;
		other_contracts { Contract "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi" nat }`,
	"map_list": `
		code { MAP { PUSH int 1 ; ADD } } ;
		input { Stack_elt (list int) { 1 ; 2 ; 3 } } ;
		output { Stack_elt (list int) { 2 ; 3 ; 4 } }`,
}

func newState(t *testing.T) *state.State {
	s, err := state.NewState(memdb.New(), prometheus.NewRegistry())
	require.NoError(t, err)
	return s
}

func TestFixtures(t *testing.T) {
	for name, src := range passing {
		src := src
		t.Run(name, func(t *testing.T) {
			test, err := Parse(src)
			require.NoError(t, err)
			require.NoError(t, test.Run(newState(t)))
		})
	}
}

func TestUnexpectedOutcome(t *testing.T) {
	tests := map[string]string{
		"wrong_stack": `
			code { ADD } ;
			input { Stack_elt int 1 ; Stack_elt int 1 } ;
			output { Stack_elt int 3 }`,
		"wrong_length": `
			code {} ;
			input { Stack_elt int 1 } ;
			output {}`,
		"unexpected_failure": `
			code { FAILWITH } ;
			input { Stack_elt int 1 } ;
			output { Stack_elt int 1 }`,
		"wrong_failure": `
			code { FAILWITH } ;
			input { Stack_elt int 1 } ;
			output (Failed 2)`,
		"missing_overflow": `
			code { ADD } ;
			input { Stack_elt mutez 1 ; Stack_elt mutez 1 } ;
			output (MutezOverflow 1 1)`,
	}
	for name, src := range tests {
		src := src
		t.Run(name, func(t *testing.T) {
			test, err := Parse(src)
			require.NoError(t, err)
			err = test.Run(newState(t))
			var outcomeErr *OutcomeError
			require.True(t, errors.As(err, &outcomeErr), "got %v", err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		src string
		err error
	}{
		"missing_output": {
			src: `code {} ; input {}`,
			err: errMissingSection,
		},
		"duplicate": {
			src: `code {} ; code {} ; input {} ; output {}`,
			err: errDuplicate,
		},
		"unknown_section": {
			src: `code {} ; input {} ; output {} ; gas 10`,
			err: errBadSection,
		},
		"bad_stack_elt": {
			src: `code {} ; input { Elt int 1 } ; output {}`,
			err: errBadSection,
		},
		"bad_outcome": {
			src: `code {} ; input {} ; output (Exploded 1)`,
			err: errBadSection,
		},
		"bad_other_contracts": {
			src: `code {} ; input {} ; output {} ; other_contracts { Elt 1 2 }`,
			err: errBadSection,
		},
	}
	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			_, err := Parse(test.src)
			require.ErrorIs(t, err, test.err)
		})
	}

	_, err := Parse(`code {} ; input { Stack_elt nat -1 } ; output {}`)
	var mismatch *michelson.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
}

func TestDefaults(t *testing.T) {
	assert := assert.New(t)

	test, err := Parse(`code {} ; input {} ; output {}`)
	require.NoError(t, err)
	ectx := test.ExecutionContext()
	assert.Equal(DefaultSelf, ectx.Self.String())
	assert.Equal(DefaultSender, ectx.Sender.String())
	assert.Equal(DefaultSource, ectx.Source.String())
	assert.Equal(DefaultChainID, ectx.ChainID.String())
	assert.Nil(ectx.Balance)
	assert.Zero(ectx.Now.Sign())
	assert.True(ectx.SelfType.Equal(michelson.UnitType))
}
