// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// CodecVersion is the current default codec version
	CodecVersion = 0
)

// Codec serializes the account and contract records
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()
	Codec = codec.NewDefaultManager()

	errs := wrappers.Errs{}
	errs.Add(
		c.RegisterType(&account{}),
		c.RegisterType(&contract{}),
	)
	errs.Add(
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

// account is the stored form of an implicit or originated account
type account struct {
	Balance uint64 `serialize:"true"`
	// Counter is the big-endian magnitude of the operation counter
	Counter []byte `serialize:"true"`
}

// contract is the stored form of an originated contract. Types and
// storage are kept as binary micheline.
type contract struct {
	Parameter   []byte `serialize:"true"`
	StorageType []byte `serialize:"true"`
	Storage     []byte `serialize:"true"`
}
