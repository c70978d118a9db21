// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"math/big"

	"github.com/ava-labs/avalanchego/database"
)

const (
	IsInitializedKey byte = iota
	NextBigMapIDKey
)

var (
	isInitializedKey = []byte{IsInitializedKey}
	nextBigMapIDKey  = []byte{NextBigMapIDKey}

	_ SingletonState = (*singletonState)(nil)
)

// SingletonState keeps the values that exist once per chain: the
// initialization status and the big map identifier counter.
type SingletonState interface {
	IsInitialized() (bool, error)
	SetInitialized() error

	// NextBigMapID returns the identifier the next allocation will use
	NextBigMapID() (*big.Int, error)
	SetNextBigMapID(id *big.Int) error
}

type singletonState struct {
	singletonDB database.Database
}

func NewSingletonState(db database.Database) SingletonState {
	return &singletonState{
		singletonDB: db,
	}
}

func (s *singletonState) IsInitialized() (bool, error) {
	return s.singletonDB.Has(isInitializedKey)
}

func (s *singletonState) SetInitialized() error {
	return s.singletonDB.Put(isInitializedKey, nil)
}

func (s *singletonState) NextBigMapID() (*big.Int, error) {
	b, err := s.singletonDB.Get(nextBigMapIDKey)
	if err == database.ErrNotFound {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}

func (s *singletonState) SetNextBigMapID(id *big.Int) error {
	return s.singletonDB.Put(nextBigMapIDKey, id.Bytes())
}
