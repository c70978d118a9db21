// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package service exposes the Michelson interpreter over JSON-RPC. Every
// call is a simulation: state changes made by a run are rolled back.
package service

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/gorilla/rpc/v2"
	log "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/michelsonvm/micheline"
	"github.com/ava-labs/michelsonvm/michelson"
	"github.com/ava-labs/michelsonvm/state"
	"github.com/ava-labs/michelsonvm/tzt"
)

const (
	// Name is the JSON-RPC service name
	Name = "michelson"

	metricsNamespace = "michelsonvm"
)

var errNoScript = errors.New("no script given")

// Service runs Michelson code against a chain state
type Service struct {
	lock    sync.Mutex
	state   *state.State
	chainID michelson.ChainID
	clock   mockable.Clock
	metrics *metrics
}

// New returns a service over [st]. Runs default to [chainID] and report
// metrics to [registerer].
func New(st *state.State, chainID michelson.ChainID, registerer prometheus.Registerer) (*Service, error) {
	m, err := newMetrics(metricsNamespace, registerer)
	if err != nil {
		return nil, err
	}
	return &Service{
		state:   st,
		chainID: chainID,
		metrics: m,
	}, nil
}

// NewHandler returns the JSON-RPC handler serving [s]
func NewHandler(s *Service) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(s, Name)
}

// simulate runs [f] with exclusive access to the state and discards its
// writes
func (s *Service) simulate(method string, f func(gctx michelson.GlobalContext) (string, error)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	defer s.state.Rollback()

	start := s.clock.Time()
	outcome, err := f(s.state)
	if err != nil {
		outcome = outcomeError
	}
	s.metrics.observe(method, outcome, s.clock.Time().Sub(start).Seconds())
	return err
}

// RunCodeArgs are the arguments to RunCode. Literals use the Michelson
// text syntax.
type RunCodeArgs struct {
	Script    string       `json:"script"`
	Parameter string       `json:"parameter"`
	Storage   string       `json:"storage"`
	Amount    json.Uint64  `json:"amount"`
	Balance   *json.Uint64 `json:"balance"`
	Sender    string       `json:"sender"`
	Source    string       `json:"source"`
	Self      string       `json:"self"`
	// Now is a timestamp literal, the service clock when empty
	Now   string      `json:"now"`
	Level json.Uint64 `json:"level"`
}

// RunCodeReply is the reply from RunCode. FailedWith is set instead of
// Storage when the script reached FAILWITH.
type RunCodeReply struct {
	Storage    string      `json:"storage,omitempty"`
	Operations json.Uint32 `json:"operations"`
	FailedWith string      `json:"failedWith,omitempty"`
}

// RunCode runs a script on a parameter and a storage
func (s *Service) RunCode(_ *http.Request, args *RunCodeArgs, reply *RunCodeReply) error {
	log.Debug("michelson.runCode called")

	if args.Script == "" {
		return errNoScript
	}
	n, err := micheline.Parse(args.Script)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}
	script, err := michelson.ParseScript(n)
	if err != nil {
		return err
	}
	param, err := parseData(args.Parameter, script.Parameter)
	if err != nil {
		return fmt.Errorf("invalid parameter: %w", err)
	}
	storage, err := parseData(args.Storage, script.Storage)
	if err != nil {
		return fmt.Errorf("invalid storage: %w", err)
	}
	ectx, err := s.executionContext(args)
	if err != nil {
		return err
	}

	return s.simulate("runCode", func(gctx michelson.GlobalContext) (string, error) {
		ops, result, err := michelson.RunScript(script, param, storage, gctx, ectx)
		if with, failed := michelson.IsScriptFailure(err); failed {
			log.Debug("script failed", "with", michelson.IntoData(with))
			reply.FailedWith = michelson.IntoData(with).String()
			return outcomeFailed, nil
		}
		if err != nil {
			log.Warn("script run errored", "error", err)
			return "", err
		}
		reply.Storage = michelson.IntoData(result).String()
		reply.Operations = json.Uint32(len(ops.Items))
		return outcomeSuccess, nil
	})
}

func (s *Service) executionContext(args *RunCodeArgs) (*michelson.ExecutionContext, error) {
	addrs := []string{args.Self, args.Sender, args.Source}
	defaults := []string{tzt.DefaultSelf, tzt.DefaultSender, tzt.DefaultSource}
	parsed := make([]michelson.Address, len(addrs))
	for i, a := range addrs {
		if a == "" {
			a = defaults[i]
		}
		addr, err := michelson.ParseAddress(a)
		if err != nil {
			return nil, err
		}
		parsed[i] = addr
	}

	ectx := michelson.NewExecutionContext(parsed[0], parsed[1], parsed[2])
	ectx.ChainID = s.chainID
	ectx.Amount = michelson.Mutez(args.Amount)
	ectx.Level = new(big.Int).SetUint64(uint64(args.Level))
	if args.Balance != nil {
		balance := michelson.Mutez(*args.Balance)
		ectx.Balance = &balance
	}
	if ectx.Amount < 0 || (ectx.Balance != nil && *ectx.Balance < 0) {
		return nil, michelson.ErrMutezOverflow
	}
	if args.Now == "" {
		ectx.Now = big.NewInt(s.clock.Time().Unix())
		return ectx, nil
	}
	now, err := parseData(args.Now, michelson.TimestampType)
	if err != nil {
		return nil, fmt.Errorf("invalid now: %w", err)
	}
	ectx.Now = now.(michelson.Timestamp).V
	return ectx, nil
}

// PackArgs are the arguments to Pack
type PackArgs struct {
	Data string `json:"data"`
	Type string `json:"type"`
}

// PackReply is the reply from Pack
type PackReply struct {
	// Bytes is hex encoded
	Bytes string `json:"bytes"`
	// Hash is the script expression hash of the packed bytes
	Hash string `json:"hash"`
}

// Pack serializes a value the way PACK does
func (s *Service) Pack(_ *http.Request, args *PackArgs, reply *PackReply) error {
	log.Debug("michelson.pack called")

	ty, err := parseType(args.Type)
	if err != nil {
		return err
	}
	v, err := parseData(args.Data, ty)
	if err != nil {
		return err
	}
	packed, err := michelson.Pack(v)
	if err != nil {
		return err
	}
	reply.Bytes, err = formatting.EncodeWithChecksum(formatting.Hex, packed)
	if err != nil {
		return fmt.Errorf("couldn't encode packed bytes: %w", err)
	}
	reply.Hash, _ = michelson.ScriptExprHash(packed)
	return nil
}

// UnpackArgs are the arguments to Unpack
type UnpackArgs struct {
	Bytes string `json:"bytes"`
	Type  string `json:"type"`
}

// UnpackReply is the reply from Unpack
type UnpackReply struct {
	Data string `json:"data"`
}

// Unpack reads back bytes produced by Pack
func (s *Service) Unpack(_ *http.Request, args *UnpackArgs, reply *UnpackReply) error {
	log.Debug("michelson.unpack called")

	ty, err := parseType(args.Type)
	if err != nil {
		return err
	}
	b, err := formatting.Decode(formatting.Hex, args.Bytes)
	if err != nil {
		return fmt.Errorf("couldn't decode bytes: %w", err)
	}
	v, err := michelson.Unpack(b, ty)
	if err != nil {
		return err
	}
	reply.Data = michelson.IntoData(v).String()
	return nil
}

// RunTZTArgs are the arguments to RunTZT
type RunTZTArgs struct {
	Test string `json:"test"`
}

// RunTZTReply is the reply from RunTZT. Message explains a fixture whose
// outcome did not match.
type RunTZTReply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RunTZT runs a TZT fixture
func (s *Service) RunTZT(_ *http.Request, args *RunTZTArgs, reply *RunTZTReply) error {
	log.Debug("michelson.runTZT called")

	test, err := tzt.Parse(args.Test)
	if err != nil {
		return err
	}
	return s.simulate("runTZT", func(gctx michelson.GlobalContext) (string, error) {
		err := test.Run(gctx)
		var outcomeErr *tzt.OutcomeError
		if errors.As(err, &outcomeErr) {
			reply.Message = outcomeErr.Error()
			return outcomeFailed, nil
		}
		if err != nil {
			return "", err
		}
		reply.Success = true
		return outcomeSuccess, nil
	})
}

func parseType(src string) (michelson.Type, error) {
	n, err := micheline.Parse(src)
	if err != nil {
		return michelson.Type{}, fmt.Errorf("failed to parse type: %w", err)
	}
	return michelson.ParseType(n)
}

func parseData(src string, ty michelson.Type) (michelson.Item, error) {
	n, err := micheline.Parse(src)
	if err != nil {
		return nil, err
	}
	return michelson.FromData(n, ty)
}
