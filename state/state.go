// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/metercacher"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/michelsonvm/michelson"
)

const (
	contractCacheSize = 1024
)

var (
	// These are prefixes for db keys.
	// Each separate database object gets its own prefix.
	singletonStatePrefix = []byte("singleton")
	accountPrefix        = []byte("account")
	contractPrefix       = []byte("contract")
	bigMapPrefix         = []byte("bigmap")

	errWrongVersion = errors.New("wrong codec version")

	_ michelson.GlobalContext = (*State)(nil)
)

// State is the database backed chain state a Michelson run reads and
// writes. Writes stay pending in a version layer until Commit.
type State struct {
	SingletonState

	baseDB     *versiondb.Database
	accountDB  database.Database
	contractDB database.Database
	bigMapDB   database.Database

	// address string --> parameter type of the contract
	contractCache cache.Cacher

	dirty bool
}

// NewState returns a state over [db]. The contract type cache registers
// its metrics with [registerer].
func NewState(db database.Database, registerer prometheus.Registerer) (*State, error) {
	baseDB := versiondb.New(db)

	contractCache, err := metercacher.New(
		"contract_cache",
		registerer,
		&cache.LRU{Size: contractCacheSize},
	)
	if err != nil {
		return nil, err
	}

	return &State{
		SingletonState: NewSingletonState(prefixdb.New(singletonStatePrefix, baseDB)),
		baseDB:         baseDB,
		accountDB:      prefixdb.New(accountPrefix, baseDB),
		contractDB:     prefixdb.New(contractPrefix, baseDB),
		bigMapDB:       prefixdb.New(bigMapPrefix, baseDB),
		contractCache:  contractCache,
	}, nil
}

func (s *State) getAccount(addr michelson.Address) (*account, bool, error) {
	b, err := s.accountDB.Get(addr.WithoutEntrypoint().Bytes())
	if err == database.ErrNotFound {
		return &account{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	acc := &account{}
	version, err := Codec.Unmarshal(b, acc)
	if err != nil {
		return nil, false, err
	}
	if version != CodecVersion {
		return nil, false, errWrongVersion
	}
	return acc, true, nil
}

func (s *State) putAccount(addr michelson.Address, acc *account) error {
	b, err := Codec.Marshal(CodecVersion, acc)
	if err != nil {
		return err
	}
	s.dirty = true
	return s.accountDB.Put(addr.WithoutEntrypoint().Bytes(), b)
}

// GetBalance returns the balance of [addr], or false for an unknown
// account
func (s *State) GetBalance(addr michelson.Address) (michelson.Mutez, bool, error) {
	acc, ok, err := s.getAccount(addr)
	if err != nil || !ok {
		return 0, ok, err
	}
	return michelson.Mutez(acc.Balance), true, nil
}

// SetBalance sets the balance of [addr], creating the account if needed
func (s *State) SetBalance(addr michelson.Address, balance michelson.Mutez) error {
	if balance < 0 {
		return michelson.ErrMutezUnderflow
	}
	acc, _, err := s.getAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = uint64(balance)
	return s.putAccount(addr, acc)
}

// GetCounter returns the operation counter of [addr], zero when unknown
func (s *State) GetCounter(addr michelson.Address) (*big.Int, error) {
	acc, _, err := s.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(acc.Counter), nil
}

// IncrementCounter bumps the operation counter of [addr] and returns the
// new value
func (s *State) IncrementCounter(addr michelson.Address) (*big.Int, error) {
	acc, _, err := s.getAccount(addr)
	if err != nil {
		return nil, err
	}
	counter := new(big.Int).SetBytes(acc.Counter)
	counter.Add(counter, big.NewInt(1))
	acc.Counter = counter.Bytes()
	return counter, s.putAccount(addr, acc)
}

// HasPendingChanges reports writes made since the last Commit or Rollback
func (s *State) HasPendingChanges() bool {
	return s.dirty
}

// Commit commits pending operations to the underlying database
func (s *State) Commit() error {
	if err := s.baseDB.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	log.Debug("committed state", "pending", s.dirty)
	s.dirty = false
	return nil
}

// Rollback discards pending operations
func (s *State) Rollback() {
	s.baseDB.Abort()
	s.contractCache.Flush()
	log.Debug("rolled back state", "pending", s.dirty)
	s.dirty = false
}

// Checksum hashes every key and value visible through the state,
// pending writes included, in key order
func (s *State) Checksum() (ids.ID, error) {
	it := s.baseDB.NewIterator()
	defer it.Release()

	sum := ids.Empty
	for it.Next() {
		buf := make([]byte, 0, len(sum)+len(it.Key())+len(it.Value()))
		buf = append(buf, sum[:]...)
		buf = append(buf, it.Key()...)
		buf = append(buf, it.Value()...)
		sum = hashing.ComputeHash256Array(buf)
	}
	return sum, it.Error()
}

// Close closes the underlying base database
func (s *State) Close() error {
	return s.baseDB.Close()
}
