// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	assert := assert.New(t)

	config, err := getConfig(nil)
	require.NoError(t, err)
	assert.False(config.PrintVersion)
	assert.Equal("127.0.0.1", config.HTTPHost)
	assert.Equal(uint(9650), config.HTTPPort)
	assert.Equal("NetXdQprcVkpaWU", config.ChainID)

	config, err = getConfig([]string{"--version", "--http-port=9000"})
	require.NoError(t, err)
	assert.True(config.PrintVersion)
	assert.Equal(uint(9000), config.HTTPPort)

	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"log-level":"debug"}`), 0o600))
	config, err = getConfig([]string{"--config-file=" + file})
	require.NoError(t, err)
	assert.Equal("debug", config.LogLevel)

	_, err = getConfig([]string{"--config-file=" + filepath.Join(dir, "missing.json")})
	assert.Error(err)
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	genesis := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(genesis, []byte(`{"accounts":[{"address":"KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi","balance":"25"}]}`), 0o600))

	registry := prometheus.NewRegistry()
	config, err := getConfig([]string{"--genesis-file=" + genesis})
	require.NoError(t, err)
	handler, err := newHandler(config, registry, registry)
	require.NoError(t, err)

	body := `{"jsonrpc":"2.0","id":1,"method":"michelson.runCode","params":{"script":"{ parameter unit ; storage mutez ; code { DROP ; BALANCE ; NIL operation ; PAIR } }","parameter":"Unit","storage":"0"}}`
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"storage":"25"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "michelsonvm_runs")

	_, err = newHandler(Config{ChainID: "nope"}, prometheus.NewRegistry(), prometheus.NewRegistry())
	assert.Error(t, err)
}
