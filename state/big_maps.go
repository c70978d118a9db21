// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
)

// bigMap returns the namespace holding the entries of big map [id]
func (s *State) bigMap(id *big.Int) database.Database {
	return prefixdb.New([]byte(id.String()), s.bigMapDB)
}

// GetBigMapEntry reads the packed value stored under [keyHash]
func (s *State) GetBigMapEntry(id *big.Int, keyHash []byte) ([]byte, bool, error) {
	v, err := s.bigMap(id).Get(keyHash)
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// PutBigMapEntry writes a packed value, removing the entry when [value]
// is nil
func (s *State) PutBigMapEntry(id *big.Int, keyHash []byte, value []byte) error {
	if value == nil {
		return s.DeleteBigMapEntry(id, keyHash)
	}
	s.dirty = true
	return s.bigMap(id).Put(keyHash, value)
}

// DeleteBigMapEntry removes the entry under [keyHash]
func (s *State) DeleteBigMapEntry(id *big.Int, keyHash []byte) error {
	s.dirty = true
	return s.bigMap(id).Delete(keyHash)
}

// NewBigMapID allocates the identifier of a new big map
func (s *State) NewBigMapID() (*big.Int, error) {
	id, err := s.NextBigMapID()
	if err != nil {
		return nil, err
	}
	s.dirty = true
	if err := s.SetNextBigMapID(new(big.Int).Add(id, big.NewInt(1))); err != nil {
		return nil, err
	}
	return id, nil
}
