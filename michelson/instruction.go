// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package michelson

import (
	"fmt"
	"strings"

	"github.com/ava-labs/michelsonvm/micheline"
)

// Opcode identifies an instruction. The set is closed: every opcode is
// handled by the switch in step.
type Opcode int

const (
	OpSeq Opcode = iota
	OpUnsupported

	// stack
	OpPush
	OpDrop
	OpDup
	OpSwap
	OpDig
	OpDug
	OpDip
	OpUnit
	OpNever
	OpFailwith

	// arithmetic and bitwise
	OpAdd
	OpSub
	OpSubMutez
	OpMul
	OpEdiv
	OpNeg
	OpAbs
	OpIsNat
	OpInt
	OpAnd
	OpOr
	OpXor
	OpNot
	OpLsl
	OpLsr

	// comparison
	OpCompare
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe

	// structural
	OpPair
	OpUnpair
	OpCar
	OpCdr
	OpLeft
	OpRight
	OpSome
	OpNone
	OpIf
	OpIfNone
	OpIfLeft
	OpIfCons

	// collections
	OpNil
	OpCons
	OpEmptySet
	OpEmptyMap
	OpEmptyBigMap
	OpMem
	OpGet
	OpUpdate
	OpGetAndUpdate
	OpSize
	OpConcat
	OpSlice

	// iteration
	OpMap
	OpIter
	OpLoop
	OpLoopLeft

	// lambdas
	OpLambda
	OpExec
	OpApply

	// context
	OpAmount
	OpBalance
	OpNow
	OpSelf
	OpSelfAddress
	OpSender
	OpSource
	OpChainID
	OpLevel
	OpAddress
	OpContract
	OpImplicitAccount

	// serialization
	OpPack
	OpUnpack

	// crypto
	OpHashKey
	OpBlake2b
	OpSha256
	OpSha512
	OpKeccak
	OpSha3
	OpCheckSignature

	// tickets
	OpTicket
	OpReadTicket
	OpSplitTicket
	OpJoinTickets
)

var opNames = map[Opcode]string{
	OpSeq:             "{}",
	OpPush:            "PUSH",
	OpDrop:            "DROP",
	OpDup:             "DUP",
	OpSwap:            "SWAP",
	OpDig:             "DIG",
	OpDug:             "DUG",
	OpDip:             "DIP",
	OpUnit:            "UNIT",
	OpNever:           "NEVER",
	OpFailwith:        "FAILWITH",
	OpAdd:             "ADD",
	OpSub:             "SUB",
	OpSubMutez:        "SUB_MUTEZ",
	OpMul:             "MUL",
	OpEdiv:            "EDIV",
	OpNeg:             "NEG",
	OpAbs:             "ABS",
	OpIsNat:           "ISNAT",
	OpInt:             "INT",
	OpAnd:             "AND",
	OpOr:              "OR",
	OpXor:             "XOR",
	OpNot:             "NOT",
	OpLsl:             "LSL",
	OpLsr:             "LSR",
	OpCompare:         "COMPARE",
	OpEq:              "EQ",
	OpNeq:             "NEQ",
	OpLt:              "LT",
	OpLe:              "LE",
	OpGt:              "GT",
	OpGe:              "GE",
	OpPair:            "PAIR",
	OpUnpair:          "UNPAIR",
	OpCar:             "CAR",
	OpCdr:             "CDR",
	OpLeft:            "LEFT",
	OpRight:           "RIGHT",
	OpSome:            "SOME",
	OpNone:            "NONE",
	OpIf:              "IF",
	OpIfNone:          "IF_NONE",
	OpIfLeft:          "IF_LEFT",
	OpIfCons:          "IF_CONS",
	OpNil:             "NIL",
	OpCons:            "CONS",
	OpEmptySet:        "EMPTY_SET",
	OpEmptyMap:        "EMPTY_MAP",
	OpEmptyBigMap:     "EMPTY_BIG_MAP",
	OpMem:             "MEM",
	OpGet:             "GET",
	OpUpdate:          "UPDATE",
	OpGetAndUpdate:    "GET_AND_UPDATE",
	OpSize:            "SIZE",
	OpConcat:          "CONCAT",
	OpSlice:           "SLICE",
	OpMap:             "MAP",
	OpIter:            "ITER",
	OpLoop:            "LOOP",
	OpLoopLeft:        "LOOP_LEFT",
	OpLambda:          "LAMBDA",
	OpExec:            "EXEC",
	OpApply:           "APPLY",
	OpAmount:          "AMOUNT",
	OpBalance:         "BALANCE",
	OpNow:             "NOW",
	OpSelf:            "SELF",
	OpSelfAddress:     "SELF_ADDRESS",
	OpSender:          "SENDER",
	OpSource:          "SOURCE",
	OpChainID:         "CHAIN_ID",
	OpLevel:           "LEVEL",
	OpAddress:         "ADDRESS",
	OpContract:        "CONTRACT",
	OpImplicitAccount: "IMPLICIT_ACCOUNT",
	OpPack:            "PACK",
	OpUnpack:          "UNPACK",
	OpHashKey:         "HASH_KEY",
	OpBlake2b:         "BLAKE2B",
	OpSha256:          "SHA256",
	OpSha512:          "SHA512",
	OpKeccak:          "KECCAK",
	OpSha3:            "SHA3",
	OpCheckSignature:  "CHECK_SIGNATURE",
	OpTicket:          "TICKET",
	OpReadTicket:      "READ_TICKET",
	OpSplitTicket:     "SPLIT_TICKET",
	OpJoinTickets:     "JOIN_TICKETS",
}

var opcodes = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// unwired lists the primitives that parse but have no handler
var unwired = map[string]bool{
	"TRANSFER_TOKENS":       true,
	"SET_DELEGATE":          true,
	"CREATE_CONTRACT":       true,
	"EMIT":                  true,
	"VIEW":                  true,
	"VOTING_POWER":          true,
	"TOTAL_VOTING_POWER":    true,
	"SAPLING_EMPTY_STATE":   true,
	"SAPLING_VERIFY_UPDATE": true,
	"OPEN_CHEST":            true,
	"PAIRING_CHECK":         true,
	"MIN_BLOCK_TIME":        true,
	"CREATE_ACCOUNT":        true,
	"STEPS_TO_QUOTA":        true,
	"LAMBDA_REC":            true,
	"CAST":                  true,
	"RENAME":                true,
}

func (op Opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instruction is one parsed instruction. Only the fields relevant to Op
// are set.
type Instruction struct {
	Op Opcode
	// N is the numeric argument of DROP, DUP, DIG, DUG, DIP, PAIR, UNPAIR,
	// GET and UPDATE, or -1 when absent.
	N int
	// Type is the type argument of PUSH, NIL, NONE, EMPTY_SET, UNPACK,
	// CONTRACT, the key type of EMPTY_MAP and EMPTY_BIG_MAP, and the
	// opposite branch type of LEFT and RIGHT.
	Type Type
	// Type2 is the value type of EMPTY_MAP and EMPTY_BIG_MAP
	Type2 Type
	// Value is the literal of PUSH and LAMBDA
	Value Item
	// Body is the nested sequence, or the first branch of an IF
	Body []Instruction
	// Else is the second branch of an IF
	Else       []Instruction
	Entrypoint string
	// Prim is the source primitive of an unsupported instruction
	Prim string
}

func (in *Instruction) String() string {
	if in.Op == OpUnsupported {
		return in.Prim
	}
	if in.N >= 0 {
		return fmt.Sprintf("%s %d", in.Op, in.N)
	}
	return in.Op.String()
}

// ParseInstructions reads a sequence of instructions. Nested sequences
// become OpSeq instructions.
func ParseInstructions(n micheline.Node) ([]Instruction, error) {
	if n.Kind != micheline.KindSeq {
		in, err := parseInstruction(n)
		if err != nil {
			return nil, err
		}
		return []Instruction{in}, nil
	}
	code := make([]Instruction, 0, len(n.Args))
	for _, a := range n.Args {
		in, err := parseInstruction(a)
		if err != nil {
			return nil, err
		}
		code = append(code, in)
	}
	return code, nil
}

// MustParseInstructions parses code from source text, panicking on error
func MustParseInstructions(src string) []Instruction {
	code, err := ParseInstructions(micheline.MustParse(src))
	if err != nil {
		panic(err)
	}
	return code
}

func parseInstruction(n micheline.Node) (Instruction, error) {
	in := Instruction{N: -1}
	switch n.Kind {
	case micheline.KindSeq:
		body, err := ParseInstructions(n)
		if err != nil {
			return in, err
		}
		in.Op, in.Body = OpSeq, body
		return in, nil
	case micheline.KindPrim:
	default:
		return in, &TypeMismatchError{Expected: "instruction", Found: describe(n)}
	}

	op, ok := opcodes[n.Prim]
	if !ok {
		if unwired[n.Prim] || strings.HasPrefix(n.Prim, "SAPLING_") {
			in.Op, in.Prim = OpUnsupported, n.Prim
			return in, nil
		}
		return in, &InstructionUnsupportedError{Instruction: n.Prim}
	}
	in.Op = op
	args := n.Args

	switch op {
	case OpDrop, OpDup, OpPair, OpUnpair, OpGet, OpUpdate:
		if len(args) == 0 {
			return in, nil
		}
		if err := arity(args, 1); err != nil {
			return in, err
		}
		return in, parseN(&in, args[0])

	case OpDig, OpDug:
		if err := arity(args, 1); err != nil {
			return in, err
		}
		return in, parseN(&in, args[0])

	case OpDip:
		switch len(args) {
		case 1:
			in.N = 1
		case 2:
			if err := parseN(&in, args[0]); err != nil {
				return in, err
			}
			args = args[1:]
		default:
			return in, &InvalidArityError{Expected: 1, Found: len(args)}
		}
		var err error
		in.Body, err = parseBody(args[0])
		return in, err

	case OpMap, OpIter, OpLoop, OpLoopLeft:
		if err := arity(args, 1); err != nil {
			return in, err
		}
		var err error
		in.Body, err = parseBody(args[0])
		return in, err

	case OpIf, OpIfNone, OpIfLeft, OpIfCons:
		if err := arity(args, 2); err != nil {
			return in, err
		}
		var err error
		if in.Body, err = parseBody(args[0]); err != nil {
			return in, err
		}
		in.Else, err = parseBody(args[1])
		return in, err

	case OpPush:
		if err := arity(args, 2); err != nil {
			return in, err
		}
		t, err := ParseType(args[0])
		if err != nil {
			return in, err
		}
		v, err := FromData(args[1], t)
		if err != nil {
			return in, err
		}
		in.Type, in.Value = t, v
		return in, nil

	case OpNil, OpNone, OpLeft, OpRight, OpEmptySet, OpUnpack, OpContract:
		if err := arity(args, 1); err != nil {
			return in, err
		}
		t, err := ParseType(args[0])
		if err != nil {
			return in, err
		}
		if op == OpEmptySet && !t.Comparable() {
			return in, &TypeMismatchError{Expected: "comparable type", Found: t.String()}
		}
		in.Type = t
		if op == OpContract {
			if ep := n.Annot('%'); ep != "" {
				in.Entrypoint = ep[1:]
			}
		}
		return in, nil

	case OpEmptyMap, OpEmptyBigMap:
		if err := arity(args, 2); err != nil {
			return in, err
		}
		k, err := ParseType(args[0])
		if err != nil {
			return in, err
		}
		if !k.Comparable() {
			return in, &TypeMismatchError{Expected: "comparable type", Found: k.String()}
		}
		v, err := ParseType(args[1])
		if err != nil {
			return in, err
		}
		in.Type, in.Type2 = k, v
		return in, nil

	case OpLambda:
		if err := arity(args, 3); err != nil {
			return in, err
		}
		param, err := ParseType(args[0])
		if err != nil {
			return in, err
		}
		ret, err := ParseType(args[1])
		if err != nil {
			return in, err
		}
		if args[2].Kind != micheline.KindSeq {
			return in, &TypeMismatchError{Expected: "sequence", Found: describe(args[2])}
		}
		in.Value = Lambda{Param: param, Return: ret, Code: args[2]}
		return in, nil

	case OpSelf:
		if err := arity(args, 0); err != nil {
			return in, err
		}
		if ep := n.Annot('%'); ep != "" {
			in.Entrypoint = ep[1:]
		}
		return in, nil

	default:
		return in, arity(args, 0)
	}
}

func arity(args []micheline.Node, n int) error {
	if len(args) != n {
		return &InvalidArityError{Expected: n, Found: len(args)}
	}
	return nil
}

func parseN(in *Instruction, n micheline.Node) error {
	if n.Kind != micheline.KindInt || n.Int.Sign() < 0 || !n.Int.IsInt64() || n.Int.Int64() > 1023 {
		return &TypeMismatchError{Expected: "small natural number", Found: describe(n)}
	}
	in.N = int(n.Int.Int64())
	return nil
}

func parseBody(n micheline.Node) ([]Instruction, error) {
	if n.Kind != micheline.KindSeq {
		return nil, &TypeMismatchError{Expected: "sequence", Found: describe(n)}
	}
	return ParseInstructions(n)
}
