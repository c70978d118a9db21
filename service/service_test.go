// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/michelson"
	"github.com/ava-labs/michelsonvm/state"
	"github.com/ava-labs/michelsonvm/tzt"
)

const counterScript = `{
	parameter (or (int %add) (unit %reset)) ;
	storage int ;
	code { UNPAIR ;
	       IF_LEFT { ADD } { DROP ; DROP ; PUSH int 0 } ;
	       DUP ; PUSH int 100 ; COMPARE ; LT ; IF { FAILWITH } {} ;
	       NIL operation ; PAIR } }`

func newTestService(t *testing.T) (*Service, *state.State) {
	st, err := state.NewState(memdb.New(), prometheus.NewRegistry())
	require.NoError(t, err)
	chainID, err := michelson.ParseChainID(tzt.DefaultChainID)
	require.NoError(t, err)
	s, err := New(st, chainID, prometheus.NewRegistry())
	require.NoError(t, err)
	return s, st
}

func TestRunCode(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestService(t)

	reply := RunCodeReply{}
	require.NoError(t, s.RunCode(nil, &RunCodeArgs{
		Script:    counterScript,
		Parameter: "Left 5",
		Storage:   "10",
	}, &reply))
	assert.Equal("15", reply.Storage)
	assert.Empty(reply.FailedWith)
	assert.Equal(json.Uint32(0), reply.Operations)

	reply = RunCodeReply{}
	require.NoError(t, s.RunCode(nil, &RunCodeArgs{
		Script:    counterScript,
		Parameter: "Left 500",
		Storage:   "10",
	}, &reply))
	assert.Empty(reply.Storage)
	assert.Equal("510", reply.FailedWith)

	assert.Equal(1.0, testutil.ToFloat64(s.metrics.runs.WithLabelValues("runCode", outcomeSuccess)))
	assert.Equal(1.0, testutil.ToFloat64(s.metrics.runs.WithLabelValues("runCode", outcomeFailed)))
}

func TestRunCodeErrors(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestService(t)

	assert.ErrorIs(s.RunCode(nil, &RunCodeArgs{}, &RunCodeReply{}), errNoScript)
	assert.Error(s.RunCode(nil, &RunCodeArgs{Script: counterScript, Parameter: "Left \"x\"", Storage: "0"}, &RunCodeReply{}))
	assert.Error(s.RunCode(nil, &RunCodeArgs{Script: counterScript, Parameter: "Left 1", Storage: "0", Sender: "tz1nope"}, &RunCodeReply{}))

	err := s.RunCode(nil, &RunCodeArgs{
		Script:    `{ parameter unit ; storage unit ; code { DROP ; PUSH mutez 9223372036854775807 ; PUSH mutez 1 ; ADD } }`,
		Parameter: "Unit",
		Storage:   "Unit",
	}, &RunCodeReply{})
	assert.ErrorIs(err, michelson.ErrMutezOverflow)
	assert.Equal(1.0, testutil.ToFloat64(s.metrics.runs.WithLabelValues("runCode", outcomeError)))
}

func TestRunCodeContext(t *testing.T) {
	assert := assert.New(t)
	s, st := newTestService(t)
	s.clock.Set(time.Unix(1000, 0))

	script := `{ parameter unit ; storage (pair timestamp mutez nat) ; code { DROP ; LEVEL ; BALANCE ; PAIR ; NOW ; PAIR ; NIL operation ; PAIR } }`
	reply := RunCodeReply{}
	balance := json.Uint64(7)
	require.NoError(t, s.RunCode(nil, &RunCodeArgs{
		Script:    script,
		Parameter: "Unit",
		Storage:   "Pair 0 0 0",
		Balance:   &balance,
		Level:     3,
	}, &reply))
	assert.Equal(`Pair "1970-01-01T00:16:40Z" 7 3`, reply.Storage)

	// balance falls back to the chain state
	self := michelson.MustParseAddress(tzt.DefaultSelf)
	require.NoError(t, st.SetBalance(self, 11))
	require.NoError(t, st.Commit())
	reply = RunCodeReply{}
	require.NoError(t, s.RunCode(nil, &RunCodeArgs{
		Script:    script,
		Parameter: "Unit",
		Storage:   "Pair 0 0 0",
		Now:       "5",
	}, &reply))
	assert.Equal(`Pair "1970-01-01T00:00:05Z" 11 0`, reply.Storage)
}

func TestRunCodeRollsBack(t *testing.T) {
	assert := assert.New(t)
	s, st := newTestService(t)

	script := `{ parameter unit ; storage (big_map nat nat) ; code { CDR ; PUSH (option nat) (Some 1) ; PUSH nat 0 ; UPDATE ; NIL operation ; PAIR } }`
	for i := 0; i < 2; i++ {
		reply := RunCodeReply{}
		require.NoError(t, s.RunCode(nil, &RunCodeArgs{Script: script, Parameter: "Unit", Storage: "{}"}, &reply))
		// the same identifier is allocated each time
		assert.Equal("0", reply.Storage)
	}
	assert.False(st.HasPendingChanges())
	next, err := st.NextBigMapID()
	require.NoError(t, err)
	assert.Zero(next.Sign())
}

func TestPackUnpack(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestService(t)

	packReply := PackReply{}
	require.NoError(t, s.Pack(nil, &PackArgs{Data: "1", Type: "int"}, &packReply))
	expected, err := formatting.EncodeWithChecksum(formatting.Hex, []byte{0x05, 0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(expected, packReply.Bytes)
	assert.Equal("expru2dKqDfZG8hu4wNGkiyunvq2hdSKuVYtcKta7BWP6Q18oNxKjS", packReply.Hash)

	unpackReply := UnpackReply{}
	require.NoError(t, s.Unpack(nil, &UnpackArgs{Bytes: packReply.Bytes, Type: "int"}, &unpackReply))
	assert.Equal("1", unpackReply.Data)

	assert.Error(s.Unpack(nil, &UnpackArgs{Bytes: packReply.Bytes, Type: "string"}, &UnpackReply{}))
	assert.Error(s.Pack(nil, &PackArgs{Data: "{}", Type: "big_map int int"}, &PackReply{}))
	assert.Error(s.Pack(nil, &PackArgs{Data: "1", Type: "integer"}, &PackReply{}))
}

func TestRunTZT(t *testing.T) {
	assert := assert.New(t)
	s, _ := newTestService(t)

	reply := RunTZTReply{}
	require.NoError(t, s.RunTZT(nil, &RunTZTArgs{Test: `code { ADD } ; input { Stack_elt nat 1 ; Stack_elt nat 2 } ; output { Stack_elt nat 3 }`}, &reply))
	assert.True(reply.Success)

	reply = RunTZTReply{}
	require.NoError(t, s.RunTZT(nil, &RunTZTArgs{Test: `code { ADD } ; input { Stack_elt nat 1 ; Stack_elt nat 2 } ; output { Stack_elt nat 4 }`}, &reply))
	assert.False(reply.Success)
	assert.NotEmpty(reply.Message)

	assert.Error(s.RunTZT(nil, &RunTZTArgs{Test: `code {}`}, &RunTZTReply{}))
}

func TestHandler(t *testing.T) {
	s, _ := newTestService(t)
	handler, err := NewHandler(s)
	require.NoError(t, err)

	body := `{"jsonrpc":"2.0","id":1,"method":"michelson.pack","params":{"data":"Unit","type":"unit"}}`
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "expr"), rec.Body.String())
}
