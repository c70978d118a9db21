// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tzt reads and runs TZT fixtures: a code sequence, an input
// stack, the expected outcome and optional ambient facts.
package tzt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ava-labs/michelsonvm/micheline"
	"github.com/ava-labs/michelsonvm/michelson"
)

const (
	DefaultSelf    = "KT1BEqzn5Wx8uJrZNvuS9DVHmLvG9td3fDLi"
	DefaultSender  = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"
	DefaultSource  = "tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN"
	DefaultChainID = "NetXdQprcVkpaWU"
)

var (
	errMissingSection = errors.New("missing section")
	errDuplicate      = errors.New("duplicate section")
	errBadSection     = errors.New("malformed section")
)

// OutcomeKind tells how a fixture expects the code to end
type OutcomeKind int

const (
	Success OutcomeKind = iota
	Failed
	MutezOverflow
	MutezUnderflow
	GeneralOverflow
)

var outcomePrims = map[string]OutcomeKind{
	"Failed":          Failed,
	"MutezOverflow":   MutezOverflow,
	"MutezUnderflow":  MutezUnderflow,
	"GeneralOverflow": GeneralOverflow,
}

// Outcome is the expected end of a run. Stack is set on success and
// FailedWith, an untyped literal, on Failed.
type Outcome struct {
	Kind       OutcomeKind
	Stack      []michelson.Item
	FailedWith micheline.Node
}

// Test is a parsed fixture
type Test struct {
	Code           []michelson.Instruction
	Input          []michelson.Item
	Output         Outcome
	Amount         michelson.Mutez
	Balance        *michelson.Mutez
	Now            *big.Int
	Level          *big.Int
	Sender         michelson.Address
	Source         michelson.Address
	Self           michelson.Address
	Parameter      michelson.Type
	ChainID        michelson.ChainID
	OtherContracts map[michelson.Address]michelson.Type
}

// OutcomeError reports a run that did not end as the fixture expects
type OutcomeError struct {
	Expected string
	Found    string
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("unexpected outcome: expected %s, found %s", e.Expected, e.Found)
}

// Parse reads a fixture from its text form
func Parse(src string) (*Test, error) {
	nodes, err := micheline.ParseSeq(src)
	if err != nil {
		return nil, err
	}
	sections := make(map[string]micheline.Node, len(nodes))
	for _, n := range nodes {
		if n.Kind != micheline.KindPrim || len(n.Args) != 1 {
			return nil, fmt.Errorf("%w: %s", errBadSection, n)
		}
		if _, ok := sections[n.Prim]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicate, n.Prim)
		}
		sections[n.Prim] = n
	}
	for _, name := range []string{"code", "input", "output"} {
		if _, ok := sections[name]; !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSection, name)
		}
	}

	t := &Test{
		Sender:         michelson.MustParseAddress(DefaultSender),
		Source:         michelson.MustParseAddress(DefaultSource),
		Self:           michelson.MustParseAddress(DefaultSelf),
		Parameter:      michelson.UnitType,
		Now:            big.NewInt(0),
		Level:          big.NewInt(0),
		OtherContracts: map[michelson.Address]michelson.Type{},
	}
	if t.ChainID, err = michelson.ParseChainID(DefaultChainID); err != nil {
		return nil, err
	}

	for name, n := range sections {
		if err := t.parseSection(name, n); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return t, nil
}

func (t *Test) parseSection(name string, n micheline.Node) error {
	arg := n.Args[0]
	switch name {
	case "code":
		code, err := michelson.ParseInstructions(arg)
		if err != nil {
			return err
		}
		t.Code = code
	case "input":
		items, err := parseStack(arg)
		if err != nil {
			return err
		}
		t.Input = items
	case "output":
		return t.parseOutput(n)
	case "amount":
		v, err := michelson.FromData(arg, michelson.MutezType)
		if err != nil {
			return err
		}
		t.Amount = v.(michelson.Mutez)
	case "balance":
		v, err := michelson.FromData(arg, michelson.MutezType)
		if err != nil {
			return err
		}
		balance := v.(michelson.Mutez)
		t.Balance = &balance
	case "now":
		v, err := michelson.FromData(arg, michelson.TimestampType)
		if err != nil {
			return err
		}
		t.Now = v.(michelson.Timestamp).V
	case "level":
		v, err := michelson.FromData(arg, michelson.NatType)
		if err != nil {
			return err
		}
		t.Level = v.(michelson.Nat).V
	case "sender", "source", "self":
		v, err := michelson.FromData(arg, michelson.AddressType)
		if err != nil {
			return err
		}
		addr := v.(michelson.Address)
		switch name {
		case "sender":
			t.Sender = addr
		case "source":
			t.Source = addr
		default:
			t.Self = addr
		}
	case "parameter":
		ty, err := michelson.ParseType(arg)
		if err != nil {
			return err
		}
		t.Parameter = ty
	case "chain_id":
		v, err := michelson.FromData(arg, michelson.ChainIDType)
		if err != nil {
			return err
		}
		t.ChainID = v.(michelson.ChainID)
	case "other_contracts":
		return t.parseOtherContracts(arg)
	default:
		return fmt.Errorf("%w: unknown section %s", errBadSection, name)
	}
	return nil
}

func (t *Test) parseOutput(n micheline.Node) error {
	arg := n.Args[0]
	if arg.Kind == micheline.KindSeq {
		items, err := parseStack(arg)
		if err != nil {
			return err
		}
		t.Output = Outcome{Kind: Success, Stack: items}
		return nil
	}
	kind, ok := outcomePrims[arg.Prim]
	if arg.Kind != micheline.KindPrim || !ok {
		return fmt.Errorf("%w: unknown outcome %s", errBadSection, arg)
	}
	t.Output = Outcome{Kind: kind}
	if kind == Failed {
		if len(arg.Args) != 1 {
			return fmt.Errorf("%w: Failed takes one argument", errBadSection)
		}
		t.Output.FailedWith = arg.Args[0]
	}
	return nil
}

func (t *Test) parseOtherContracts(n micheline.Node) error {
	if n.Kind != micheline.KindSeq {
		return fmt.Errorf("%w: other_contracts takes a sequence", errBadSection)
	}
	for _, c := range n.Args {
		if !c.IsPrim("Contract") || len(c.Args) != 2 {
			return fmt.Errorf("%w: expected Contract, found %s", errBadSection, c)
		}
		v, err := michelson.FromData(c.Args[0], michelson.AddressType)
		if err != nil {
			return err
		}
		ty, err := michelson.ParseType(c.Args[1])
		if err != nil {
			return err
		}
		t.OtherContracts[v.(michelson.Address)] = ty
	}
	return nil
}

// parseStack reads "{ Stack_elt ty v ; ... }", the first element on top
func parseStack(n micheline.Node) ([]michelson.Item, error) {
	if n.Kind != micheline.KindSeq {
		return nil, fmt.Errorf("%w: expected a stack sequence", errBadSection)
	}
	items := make([]michelson.Item, 0, len(n.Args))
	for _, elt := range n.Args {
		if !elt.IsPrim("Stack_elt") || len(elt.Args) != 2 {
			return nil, fmt.Errorf("%w: expected Stack_elt, found %s", errBadSection, elt)
		}
		ty, err := michelson.ParseType(elt.Args[0])
		if err != nil {
			return nil, err
		}
		v, err := michelson.FromData(elt.Args[1], ty)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// ExecutionContext returns the ambient facts the fixture describes
func (t *Test) ExecutionContext() *michelson.ExecutionContext {
	ectx := michelson.NewExecutionContext(t.Self, t.Sender, t.Source)
	ectx.SelfType = t.Parameter
	ectx.Amount = t.Amount
	ectx.Balance = t.Balance
	ectx.Now = t.Now
	ectx.Level = t.Level
	ectx.ChainID = t.ChainID
	return ectx
}

// knownContracts adds the fixture's other contracts to a global context
type knownContracts struct {
	michelson.GlobalContext
	contracts map[michelson.Address]michelson.Type
}

func (k *knownContracts) ContractType(addr michelson.Address) (michelson.Type, bool, error) {
	if ty, ok := k.contracts[addr]; ok {
		return ty, true, nil
	}
	return k.GlobalContext.ContractType(addr)
}

// Run executes the fixture against [gctx] and checks the outcome
func (t *Test) Run(gctx michelson.GlobalContext) error {
	stack := michelson.NewStack(t.Input...)
	err := michelson.Evaluate(t.Code, stack, &knownContracts{GlobalContext: gctx, contracts: t.OtherContracts}, t.ExecutionContext())
	return t.check(stack, err)
}

func (t *Test) check(stack *michelson.Stack, err error) error {
	switch t.Output.Kind {
	case Success:
		if err != nil {
			return &OutcomeError{Expected: "success", Found: err.Error()}
		}
		return checkStack(t.Output.Stack, stack.Items())
	case Failed:
		with, ok := michelson.IsScriptFailure(err)
		if !ok {
			return &OutcomeError{Expected: "Failed " + t.Output.FailedWith.String(), Found: describe(err)}
		}
		expected, convErr := michelson.FromData(t.Output.FailedWith, with.Type())
		if convErr != nil || !michelson.Equal(expected, with) {
			return &OutcomeError{
				Expected: "Failed " + t.Output.FailedWith.String(),
				Found:    "Failed " + michelson.IntoData(with).String(),
			}
		}
		return nil
	default:
		sentinel := map[OutcomeKind]error{
			MutezOverflow:   michelson.ErrMutezOverflow,
			MutezUnderflow:  michelson.ErrMutezUnderflow,
			GeneralOverflow: michelson.ErrGeneralOverflow,
		}[t.Output.Kind]
		if !errors.Is(err, sentinel) {
			return &OutcomeError{Expected: sentinel.Error(), Found: describe(err)}
		}
		return nil
	}
}

func checkStack(expected, found []michelson.Item) error {
	if len(expected) != len(found) {
		return &OutcomeError{Expected: printStack(expected), Found: printStack(found)}
	}
	for i := range expected {
		if !michelson.Equal(expected[i], found[i]) {
			return &OutcomeError{Expected: printStack(expected), Found: printStack(found)}
		}
	}
	return nil
}

func printStack(items []michelson.Item) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = fmt.Sprintf("Stack_elt %s %s", v.Type(), michelson.IntoData(v))
	}
	return "{ " + strings.Join(parts, " ; ") + " }"
}

func describe(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}
