// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/micheline"
)

const (
	testSender   = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"
	testSource   = "tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN"
	testContract = "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi"
)

// memoryContext is a GlobalContext kept in maps
type memoryContext struct {
	balances  map[Address]Mutez
	counters  map[Address]*big.Int
	contracts map[Address]Type
	bigMaps   map[string][]byte
	nextID    int64
	dirty     bool
}

func newMemoryContext() *memoryContext {
	return &memoryContext{
		balances:  map[Address]Mutez{},
		counters:  map[Address]*big.Int{},
		contracts: map[Address]Type{},
		bigMaps:   map[string][]byte{},
	}
}

func bigMapKey(id *big.Int, keyHash []byte) string {
	return id.String() + "/" + hex.EncodeToString(keyHash)
}

func (m *memoryContext) GetBalance(addr Address) (Mutez, bool, error) {
	b, ok := m.balances[addr]
	return b, ok, nil
}

func (m *memoryContext) GetCounter(addr Address) (*big.Int, error) {
	if c, ok := m.counters[addr]; ok {
		return c, nil
	}
	return big.NewInt(0), nil
}

func (m *memoryContext) ContractType(addr Address) (Type, bool, error) {
	t, ok := m.contracts[addr]
	return t, ok, nil
}

func (m *memoryContext) GetBigMapEntry(id *big.Int, keyHash []byte) ([]byte, bool, error) {
	v, ok := m.bigMaps[bigMapKey(id, keyHash)]
	return v, ok, nil
}

func (m *memoryContext) PutBigMapEntry(id *big.Int, keyHash []byte, value []byte) error {
	m.dirty = true
	if value == nil {
		delete(m.bigMaps, bigMapKey(id, keyHash))
		return nil
	}
	m.bigMaps[bigMapKey(id, keyHash)] = value
	return nil
}

func (m *memoryContext) NewBigMapID() (*big.Int, error) {
	m.dirty = true
	id := big.NewInt(m.nextID)
	m.nextID++
	return id, nil
}

func (m *memoryContext) HasPendingChanges() bool { return m.dirty }
func (m *memoryContext) Commit() error            { m.dirty = false; return nil }
func (m *memoryContext) Rollback()                { m.dirty = false }

func testContext() *ExecutionContext {
	return NewExecutionContext(
		MustParseAddress(testContract),
		MustParseAddress(testSender),
		MustParseAddress(testSource),
	)
}

// data converts literal [src] under type [ty]
func data(t *testing.T, src, ty string) Item {
	v, err := FromData(micheline.MustParse(src), MustParseType(ty))
	require.NoError(t, err)
	return v
}

// run evaluates [code] over [items], the first one on top
func run(code string, items ...Item) (*Stack, error) {
	s := NewStack(items...)
	err := Evaluate(MustParseInstructions(code), s, newMemoryContext(), testContext())
	return s, err
}

// requireStack checks the stack against literals of the form "type value"
func requireStack(t *testing.T, s *Stack, expected ...[2]string) {
	t.Helper()
	items := s.Items()
	require.Len(t, items, len(expected))
	for i, e := range expected {
		want := data(t, e[1], e[0])
		require.True(t, Equal(want, items[i]), "depth %d: expected %s, found %s", i, IntoData(want), IntoData(items[i]))
	}
}

func hexOf(v Item) string { return hex.EncodeToString(v.(Bytes)) }
