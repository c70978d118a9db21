// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/version"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ava-labs/michelsonvm/michelson"
	"github.com/ava-labs/michelsonvm/service"
	"github.com/ava-labs/michelsonvm/state"
)

const Name = "michelsonvm"

var Version = version.NewDefaultVersion(0, 1, 0)

func main() {
	config, err := getConfig(os.Args[1:])
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if config.PrintVersion {
		fmt.Printf("%s@%s\n", Name, Version)
		os.Exit(0)
	}

	if err := run(config); err != nil {
		fmt.Printf("serve returned an error: %s\n", err)
		os.Exit(1)
	}
}

func run(config Config) error {
	lvl, err := log.LvlFromString(config.LogLevel)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	handler, err := newHandler(config, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(config.HTTPHost, strconv.FormatUint(uint64(config.HTTPPort), 10))
	log.Info("Serving Michelson VM", "Version", Version, "address", addr)
	return http.ListenAndServe(addr, handler)
}

// newHandler wires the state and the service into the HTTP routes
func newHandler(config Config, registerer prometheus.Registerer, gatherer prometheus.Gatherer) (http.Handler, error) {
	chainID, err := michelson.ParseChainID(config.ChainID)
	if err != nil {
		return nil, fmt.Errorf("invalid chain id: %w", err)
	}

	st, err := state.NewState(memdb.New(), registerer)
	if err != nil {
		return nil, err
	}
	genesis := &state.Genesis{}
	if config.GenesisFile != "" {
		b, err := os.ReadFile(config.GenesisFile)
		if err != nil {
			return nil, err
		}
		if genesis, err = state.ParseGenesis(b); err != nil {
			return nil, err
		}
	}
	if err := st.Initialize(genesis); err != nil {
		return nil, err
	}

	s, err := service.New(st, chainID, registerer)
	if err != nil {
		return nil, err
	}
	rpcHandler, err := service.NewHandler(s)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", rpcHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux, nil
}
