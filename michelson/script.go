// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"fmt"

	"github.com/ava-labs/michelsonvm/micheline"
)

// Script is a parsed contract
type Script struct {
	Parameter Type
	Storage   Type
	Code      []Instruction
}

// ParseScript reads the parameter, storage and code sections of a
// contract, in any order.
func ParseScript(n micheline.Node) (*Script, error) {
	if n.Kind != micheline.KindSeq {
		return nil, &TypeMismatchError{Expected: "sequence", Found: describe(n)}
	}
	sections := make(map[string]micheline.Node, 3)
	for _, section := range n.Args {
		if section.Kind != micheline.KindPrim || len(section.Args) != 1 {
			return nil, &TypeMismatchError{Expected: "script section", Found: describe(section)}
		}
		if _, dup := sections[section.Prim]; dup {
			return nil, fmt.Errorf("duplicate script section %s", section.Prim)
		}
		sections[section.Prim] = section.Args[0]
	}
	for _, prim := range []string{"parameter", "storage", "code"} {
		if _, ok := sections[prim]; !ok {
			return nil, &MissingScriptFieldError{Prim: prim}
		}
	}

	param, err := ParseType(sections["parameter"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameter type: %w", err)
	}
	storage, err := ParseType(sections["storage"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse storage type: %w", err)
	}
	code, err := ParseInstructions(sections["code"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse code: %w", err)
	}
	return &Script{Parameter: param, Storage: storage, Code: code}, nil
}

// RunScript calls [script] with [param] and [storage]. It returns the
// emitted operations and the new storage, whose big maps have been
// written to [gctx].
func RunScript(script *Script, param, storage Item, gctx GlobalContext, ectx *ExecutionContext) (List, Item, error) {
	if !param.Type().Equal(script.Parameter) {
		return List{}, nil, mismatch(script.Parameter.String(), param)
	}
	if !storage.Type().Equal(script.Storage) {
		return List{}, nil, mismatch(script.Storage.String(), storage)
	}
	ctx := *ectx
	ctx.SelfType = script.Parameter

	stack := NewStack(NewPair(param, storage))
	if err := Evaluate(script.Code, stack, gctx, &ctx); err != nil {
		return List{}, nil, err
	}
	if stack.Len() != 1 {
		return List{}, nil, ErrBadReturn
	}
	top, _ := stack.Top()
	result, ok := top.(Pair)
	if !ok {
		return List{}, nil, ErrBadReturn
	}
	ops, ok := result.Car().(List)
	if !ok || !ops.Elem.Equal(OperationType) {
		return List{}, nil, ErrBadReturn
	}
	newStorage := result.Cdr()
	if !newStorage.Type().Equal(script.Storage) {
		return List{}, nil, ErrBadReturn
	}
	newStorage, err := StoreBigMaps(newStorage, gctx)
	if err != nil {
		return List{}, nil, fmt.Errorf("failed to store big maps: %w", err)
	}
	return ops, newStorage, nil
}

// StoreBigMaps writes the pending updates of every big map held in [v]
// to [gctx], allocating identifiers for new big maps, and returns [v] with
// those big maps replaced by clean references.
func StoreBigMaps(v Item, gctx GlobalContext) (Item, error) {
	switch x := v.(type) {
	case BigMap:
		return storeBigMap(x, gctx)
	case Pair:
		elems := make([]Item, len(x.Elems))
		for i, e := range x.Elems {
			stored, err := StoreBigMaps(e, gctx)
			if err != nil {
				return nil, err
			}
			elems[i] = stored
		}
		return Pair{Elems: elems, Annot: x.Annot}, nil
	case Option:
		if x.IsNone() {
			return x, nil
		}
		stored, err := StoreBigMaps(x.Value, gctx)
		if err != nil {
			return nil, err
		}
		x.Value = stored
		return x, nil
	case Or:
		stored, err := StoreBigMaps(x.Value, gctx)
		if err != nil {
			return nil, err
		}
		x.Value = stored
		return x, nil
	case List:
		items := make([]Item, len(x.Items))
		for i, e := range x.Items {
			stored, err := StoreBigMaps(e, gctx)
			if err != nil {
				return nil, err
			}
			items[i] = stored
		}
		x.Items = items
		return x, nil
	case Map:
		entries := make([]MapEntry, len(x.Entries))
		for i, e := range x.Entries {
			stored, err := StoreBigMaps(e.Value, gctx)
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: e.Key, Value: stored}
		}
		x.Entries = entries
		return x, nil
	}
	return v, nil
}

func storeBigMap(m BigMap, gctx GlobalContext) (Item, error) {
	if m.ID == nil {
		id, err := gctx.NewBigMapID()
		if err != nil {
			return nil, fmt.Errorf("failed to allocate big map: %w", err)
		}
		m.ID = id
	}
	for _, entry := range m.Overlay {
		hash, err := bigMapKeyHash(entry.Key)
		if err != nil {
			return nil, err
		}
		var value []byte
		if entry.Value != nil {
			if value, err = packItem(entry.Value); err != nil {
				return nil, err
			}
		}
		if err := gctx.PutBigMapEntry(m.ID, hash, value); err != nil {
			return nil, fmt.Errorf("failed to write big map %s: %w", m.ID, err)
		}
	}
	m.Overlay = []MapEntry{}
	return m, nil
}
