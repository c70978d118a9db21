// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/michelsonvm/service"
)

// Client defines michelsonvm client operations.
type Client interface {
	// RunCode runs a script and returns the new storage, or the value the
	// script failed with
	RunCode(ctx context.Context, args *service.RunCodeArgs) (*service.RunCodeReply, error)

	// Pack serializes [data] of type [ty] and returns the bytes with their
	// script expression hash
	Pack(ctx context.Context, data, ty string) ([]byte, string, error)

	// Unpack reads back packed bytes as a literal of type [ty]
	Unpack(ctx context.Context, b []byte, ty string) (string, error)

	// RunTZT runs a TZT fixture and returns whether it passed
	RunTZT(ctx context.Context, test string) (bool, string, error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri, "", service.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) RunCode(ctx context.Context, args *service.RunCodeArgs) (*service.RunCodeReply, error) {
	resp := new(service.RunCodeReply)
	err := cli.req.SendRequest(ctx, "runCode", args, resp)
	return resp, err
}

func (cli *client) Pack(ctx context.Context, data, ty string) ([]byte, string, error) {
	resp := new(service.PackReply)
	err := cli.req.SendRequest(ctx,
		"pack",
		&service.PackArgs{Data: data, Type: ty},
		resp,
	)
	if err != nil {
		return nil, "", err
	}
	b, err := formatting.Decode(formatting.Hex, resp.Bytes)
	if err != nil {
		return nil, "", err
	}
	return b, resp.Hash, nil
}

func (cli *client) Unpack(ctx context.Context, b []byte, ty string) (string, error) {
	bytes, err := formatting.EncodeWithChecksum(formatting.Hex, b)
	if err != nil {
		return "", err
	}

	resp := new(service.UnpackReply)
	err = cli.req.SendRequest(ctx,
		"unpack",
		&service.UnpackArgs{Bytes: bytes, Type: ty},
		resp,
	)
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

func (cli *client) RunTZT(ctx context.Context, test string) (bool, string, error) {
	resp := new(service.RunTZTReply)
	err := cli.req.SendRequest(ctx,
		"runTZT",
		&service.RunTZTArgs{Test: test},
		resp,
	)
	if err != nil {
		return false, "", err
	}
	return resp.Success, resp.Message, nil
}
