// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/json"
	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/michelsonvm/michelson"
)

// Genesis lists the accounts a new chain starts with
type Genesis struct {
	Accounts []GenesisAccount `json:"accounts"`
}

type GenesisAccount struct {
	Address string      `json:"address"`
	Balance json.Uint64 `json:"balance"`
}

// ParseGenesis reads a JSON genesis document
func ParseGenesis(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := stdjson.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	return g, nil
}

// Initialize seeds a fresh state with [genesis] and commits it. A state
// that is already initialized is left untouched.
func (s *State) Initialize(genesis *Genesis) error {
	initialized, err := s.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		log.Info("state already initialized")
		return nil
	}

	for _, a := range genesis.Accounts {
		addr, err := michelson.ParseAddress(a.Address)
		if err != nil {
			s.Rollback()
			return fmt.Errorf("invalid genesis account %q: %w", a.Address, err)
		}
		if err := s.SetBalance(addr, michelson.Mutez(a.Balance)); err != nil {
			s.Rollback()
			return err
		}
	}
	if err := s.SetInitialized(); err != nil {
		s.Rollback()
		return err
	}
	log.Info("initialized state", "accounts", len(genesis.Accounts))
	return s.Commit()
}
