// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/michelson"
	"github.com/ava-labs/michelsonvm/service"
	"github.com/ava-labs/michelsonvm/state"
	"github.com/ava-labs/michelsonvm/tzt"
)

func newTestClient(t *testing.T) Client {
	st, err := state.NewState(memdb.New(), prometheus.NewRegistry())
	require.NoError(t, err)
	chainID, err := michelson.ParseChainID(tzt.DefaultChainID)
	require.NoError(t, err)
	s, err := service.New(st, chainID, prometheus.NewRegistry())
	require.NoError(t, err)
	handler, err := service.NewHandler(s)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestClient(t *testing.T) {
	assert := assert.New(t)
	cli := newTestClient(t)
	ctx := context.Background()

	packed, hash, err := cli.Pack(ctx, "1", "int")
	require.NoError(t, err)
	assert.Equal([]byte{0x05, 0x00, 0x01}, packed)
	assert.Equal("expru2dKqDfZG8hu4wNGkiyunvq2hdSKuVYtcKta7BWP6Q18oNxKjS", hash)

	data, err := cli.Unpack(ctx, packed, "int")
	require.NoError(t, err)
	assert.Equal("1", data)

	reply, err := cli.RunCode(ctx, &service.RunCodeArgs{
		Script:    `{ parameter nat ; storage nat ; code { UNPAIR ; ADD ; NIL operation ; PAIR } }`,
		Parameter: "2",
		Storage:   "40",
	})
	require.NoError(t, err)
	assert.Equal("42", reply.Storage)

	passed, _, err := cli.RunTZT(ctx, `code { DROP } ; input { Stack_elt unit Unit } ; output {}`)
	require.NoError(t, err)
	assert.True(passed)

	_, err = cli.Unpack(ctx, packed, "not a type (")
	assert.Error(err)
}
