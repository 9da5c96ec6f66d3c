//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
)

// =============================================================================
// DAEMON RPC TESTS
// These tests run against a live kubo daemon. Point IPFSRPC_API at the
// daemon's RPC endpoint, or run a default daemon on 127.0.0.1:5001.
// =============================================================================

func TestDaemon_PeerID(t *testing.T) {
	SkipIfMissingDaemon(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewDaemonClient(t)

	id, err := client.ID(ctx)
	require.NoError(t, err, "FAIL: Could not fetch peer identity")
	require.True(t, id.Defined(), "FAIL: Peer identity is undefined")

	encoded := cidutil.EncodePeerID(id)
	require.NotEmpty(t, encoded, "FAIL: Encoded peer identity is empty")

	decoded, err := cidutil.DecodePeerID(encoded)
	require.NoError(t, err, "FAIL: Encoded peer identity does not decode")
	require.True(t, decoded.Equals(id), "FAIL: Peer identity does not roundtrip")
}

func TestDaemon_AddCatRoundtrip(t *testing.T) {
	SkipIfMissingDaemon(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewDaemonClient(t)
	content := []byte(GenerateUniqueID("e2e_content"))

	id, err := client.Add(ctx, bytes.NewReader(content))
	require.NoError(t, err, "FAIL: Could not add content")
	require.True(t, id.Defined(), "FAIL: Add returned an undefined CID")

	data, err := client.Cat(ctx, id, "")
	require.NoError(t, err, "FAIL: Could not cat content")
	require.Equal(t, content, data, "FAIL: Cat returned different content than added")
}

func TestDaemon_PinRoundtrip(t *testing.T) {
	SkipIfMissingDaemon(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewDaemonClient(t)

	id, err := client.Add(ctx, bytes.NewReader([]byte(GenerateUniqueID("e2e_pin"))))
	require.NoError(t, err, "FAIL: Could not add content")

	pins, err := client.PinAdd(ctx, id, true)
	require.NoError(t, err, "FAIL: Could not pin content")
	require.NotEmpty(t, pins, "FAIL: Pin confirmed nothing")

	pinned, err := cidutil.DecodeCID(pins[0])
	require.NoError(t, err, "FAIL: Pin confirmation is not a CID")
	require.True(t, pinned.Equals(id), "FAIL: Pinned a different CID than requested")

	pins, err = client.PinRm(ctx, id, true)
	require.NoError(t, err, "FAIL: Could not unpin content")
	require.NotEmpty(t, pins, "FAIL: Unpin confirmed nothing")
}

func TestDaemon_DagRoundtrip(t *testing.T) {
	SkipIfMissingDaemon(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewDaemonClient(t)
	node := map[string]string{"data": "This is a test"}

	id, err := client.DagPut(ctx, node)
	require.NoError(t, err, "FAIL: Could not store node")
	require.True(t, id.Defined(), "FAIL: DagPut returned an undefined CID")

	var fetched map[string]string
	err = client.DagGet(ctx, id, "", &fetched)
	require.NoError(t, err, "FAIL: Could not fetch node")
	require.Equal(t, node, fetched, "FAIL: Fetched node differs from stored node")

	var leaf string
	err = client.DagGet(ctx, id, "/data", &leaf)
	require.NoError(t, err, "FAIL: Could not fetch node leaf by path")
	require.Equal(t, "This is a test", leaf, "FAIL: Leaf value differs")
}

func TestDaemon_KeyList(t *testing.T) {
	SkipIfMissingDaemon(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewDaemonClient(t)

	keys, err := client.KeyList(ctx)
	require.NoError(t, err, "FAIL: Could not list keys")
	require.Contains(t, keys, "self", "FAIL: Key list is missing the self key")
	require.True(t, keys["self"].Defined(), "FAIL: Self key has an undefined CID")
}

func TestDaemon_NamePublishResolve(t *testing.T) {
	SkipIfMissingDaemon(t)

	// Name publication can be slow on a daemon attached to the public DHT.
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	client := NewDaemonClient(t)

	id, err := client.Add(ctx, bytes.NewReader([]byte(GenerateUniqueID("e2e_name"))))
	require.NoError(t, err, "FAIL: Could not add content")

	rec, err := client.NamePublish(ctx, id, "self")
	require.NoError(t, err, "FAIL: Could not publish name")
	require.NotEmpty(t, rec.Name, "FAIL: Published record has no name")
	require.Contains(t, rec.Value, id.String(), "FAIL: Published record points elsewhere")

	keys, err := client.KeyList(ctx)
	require.NoError(t, err, "FAIL: Could not list keys")

	resolved, err := client.NameResolve(ctx, keys["self"])
	require.NoError(t, err, "FAIL: Could not resolve name")
	require.True(t, resolved.Equals(id), "FAIL: Name resolved to a different CID")
}
