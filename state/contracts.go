// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/michelsonvm/micheline"
	"github.com/ava-labs/michelsonvm/michelson"
)

func encodeType(t michelson.Type) ([]byte, error) {
	return micheline.Encode(t.Node())
}

func decodeType(b []byte) (michelson.Type, error) {
	n, err := micheline.Decode(b)
	if err != nil {
		return michelson.Type{}, err
	}
	return michelson.ParseType(n)
}

func (s *State) getContract(addr michelson.Address) (*contract, bool, error) {
	b, err := s.contractDB.Get(addr.WithoutEntrypoint().Bytes())
	if err == database.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	c := &contract{}
	version, err := Codec.Unmarshal(b, c)
	if err != nil {
		return nil, false, err
	}
	if version != CodecVersion {
		return nil, false, errWrongVersion
	}
	return c, true, nil
}

// ContractType returns the parameter type of the contract at [addr]
func (s *State) ContractType(addr michelson.Address) (michelson.Type, bool, error) {
	key := addr.WithoutEntrypoint().String()
	if t, ok := s.contractCache.Get(key); ok {
		return t.(michelson.Type), true, nil
	}
	c, ok, err := s.getContract(addr)
	if err != nil || !ok {
		return michelson.Type{}, false, err
	}
	t, err := decodeType(c.Parameter)
	if err != nil {
		return michelson.Type{}, false, fmt.Errorf("failed to decode parameter type of %s: %w", key, err)
	}
	s.contractCache.Put(key, t)
	return t, true, nil
}

// PutContract records a contract with its parameter type and storage.
// Big maps in [storage] must already be stored.
func (s *State) PutContract(addr michelson.Address, parameter michelson.Type, storage michelson.Item) error {
	if addr.IsImplicit() {
		return fmt.Errorf("cannot originate at implicit address %s", addr)
	}
	param, err := encodeType(parameter)
	if err != nil {
		return err
	}
	storageType, err := encodeType(storage.Type())
	if err != nil {
		return err
	}
	data, err := micheline.Encode(michelson.IntoOptimizedData(storage))
	if err != nil {
		return err
	}
	b, err := Codec.Marshal(CodecVersion, &contract{
		Parameter:   param,
		StorageType: storageType,
		Storage:     data,
	})
	if err != nil {
		return err
	}
	s.dirty = true
	s.contractCache.Put(addr.WithoutEntrypoint().String(), parameter)
	return s.contractDB.Put(addr.WithoutEntrypoint().Bytes(), b)
}

// GetStorage returns the storage of the contract at [addr]
func (s *State) GetStorage(addr michelson.Address) (michelson.Item, bool, error) {
	c, ok, err := s.getContract(addr)
	if err != nil || !ok {
		return nil, false, err
	}
	t, err := decodeType(c.StorageType)
	if err != nil {
		return nil, false, err
	}
	n, err := micheline.Decode(c.Storage)
	if err != nil {
		return nil, false, err
	}
	v, err := michelson.FromData(n, t)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
