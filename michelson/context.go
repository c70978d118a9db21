// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"math/big"
)

// ExecutionContext holds the ambient facts of one script invocation.
// Instructions only ever read it.
type ExecutionContext struct {
	// Source is the implicit account that originated the call chain
	Source Address
	// Sender is the immediate caller
	Sender Address
	// Self is the address of the running contract
	Self Address
	// SelfType is the parameter type of the running contract, used by SELF
	SelfType Type
	Amount   Mutez
	// Balance overrides the balance of Self when set
	Balance *Mutez
	Now     *big.Int
	Level   *big.Int
	ChainID ChainID
}

// NewExecutionContext returns a context with zero amounts, time and level
// and a unit parameter type.
func NewExecutionContext(self, sender, source Address) *ExecutionContext {
	return &ExecutionContext{
		Source:   source,
		Sender:   sender,
		Self:     self,
		SelfType: UnitType,
		Now:      big.NewInt(0),
		Level:    big.NewInt(0),
	}
}

// GlobalContext is the chain state a run reads and writes. It is borrowed
// exclusively for the whole run: implementations need not be safe for
// concurrent runs.
type GlobalContext interface {
	// GetBalance returns the balance of [addr], or false for an unknown
	// account.
	GetBalance(addr Address) (Mutez, bool, error)
	// GetCounter returns the operation counter of an implicit account
	GetCounter(addr Address) (*big.Int, error)
	// ContractType returns the parameter type of a known contract
	ContractType(addr Address) (Type, bool, error)
	// GetBigMapEntry reads the packed value stored under [keyHash]
	GetBigMapEntry(id *big.Int, keyHash []byte) ([]byte, bool, error)
	// PutBigMapEntry writes a packed value, or removes the entry when
	// [value] is nil.
	PutBigMapEntry(id *big.Int, keyHash []byte, value []byte) error
	// NewBigMapID allocates the identifier of a new big map
	NewBigMapID() (*big.Int, error)

	HasPendingChanges() bool
	Commit() error
	Rollback()
}
