// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/michelsonvm/micheline"
)

func mustParse(t *testing.T, src string) micheline.Node {
	n, err := micheline.Parse(src)
	require.NoError(t, err)
	return n
}
