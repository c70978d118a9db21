// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"fmt"
)

func execBalance(s *Stack, e *env) error {
	if e.ectx.Balance != nil {
		s.Push(*e.ectx.Balance)
		return nil
	}
	balance, _, err := e.gctx.GetBalance(e.ectx.Self)
	if err != nil {
		return fmt.Errorf("failed to read balance of %s: %w", e.ectx.Self, err)
	}
	s.Push(balance)
	return nil
}

func execSelf(in *Instruction, s *Stack, e *env) error {
	param, ok := resolveEntrypoint(e.ectx.SelfType, in.Entrypoint)
	if !ok {
		return &TypeMismatchError{Expected: "entrypoint " + in.Entrypoint, Found: e.ectx.SelfType.String()}
	}
	self := e.ectx.Self.WithoutEntrypoint()
	if in.Entrypoint != defaultEntry {
		self.Entrypoint = in.Entrypoint
	}
	s.Push(Contract{Address: self, Param: param})
	return nil
}

// resolveEntrypoint returns the parameter type of entrypoint [name] in a
// contract of parameter type [t]. The default entrypoint is the whole
// parameter unless a branch is annotated %default.
func resolveEntrypoint(t Type, name string) (Type, bool) {
	if name == "" {
		name = defaultEntry
	}
	if found, ok := findEntrypoint(t, "%"+name); ok {
		return found, true
	}
	if name == defaultEntry {
		return t, true
	}
	return Type{}, false
}

func findEntrypoint(t Type, annot string) (Type, bool) {
	if t.Annot == annot {
		return t, true
	}
	if t.Code != TOr {
		return Type{}, false
	}
	for _, branch := range t.Args {
		if found, ok := findEntrypoint(branch, annot); ok {
			return found, true
		}
	}
	return Type{}, false
}

func address(v Item) (Item, error) {
	c, ok := v.(Contract)
	if !ok {
		return nil, mismatch("contract", v)
	}
	return c.Address, nil
}

// contract checks that [v] names a contract accepting the instruction's
// parameter type, returning None when it does not.
func contract(in *Instruction, v Item, e *env) (Item, error) {
	addr, ok := v.(Address)
	if !ok {
		return nil, mismatch("address", v)
	}
	none := NewNone(ContractOf(in.Type))
	ep := addr.Entrypoint
	if in.Entrypoint != "" {
		if ep != "" {
			return none, nil
		}
		ep = in.Entrypoint
	}
	if ep == defaultEntry {
		ep = ""
	}

	target := addr.WithoutEntrypoint()
	var param Type
	switch {
	case target.IsImplicit():
		if ep != "" {
			return none, nil
		}
		param = UnitType
	default:
		full, found := e.ectx.SelfType, target == e.ectx.Self.WithoutEntrypoint()
		if !found {
			var err error
			full, found, err = e.gctx.ContractType(target)
			if err != nil {
				return nil, fmt.Errorf("failed to look up contract %s: %w", target, err)
			}
		}
		if !found {
			return none, nil
		}
		if param, ok = resolveEntrypoint(full, ep); !ok {
			return none, nil
		}
	}
	if !param.Equal(in.Type) {
		return none, nil
	}
	target.Entrypoint = ep
	return Option{Elem: ContractOf(in.Type), Value: Contract{Address: target, Param: in.Type}}, nil
}

func implicitAccount(v Item) (Item, error) {
	kh, ok := v.(KeyHash)
	if !ok {
		return nil, mismatch("key_hash", v)
	}
	return Contract{Address: kh.Address(), Param: UnitType}, nil
}
