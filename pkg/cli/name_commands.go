package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
)

// HandleKeysCommand handles the keys command
func HandleKeysCommand(endpoint, format string, timeout time.Duration) {
	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	keys, err := client.KeyList(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list keys: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		out := make(map[string]string, len(keys))
		for name, id := range keys {
			out[name] = id.String()
		}
		printJSON(out)
		return
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-20s %s\n", name, keys[name].String())
	}
}

// HandleNamePublishCommand handles the publish command
func HandleNamePublishCommand(args []string, endpoint, format string, timeout time.Duration) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: ipfsrpc publish <cid> [--key <name>]\n")
		os.Exit(1)
	}
	id := decodeCIDArg(args[0])
	key := flagValue(args[1:], "--key", "self")

	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rec, err := client.NamePublish(ctx, id, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to publish name: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string]string{"name": rec.Name, "value": rec.Value})
	} else {
		fmt.Printf("published %s -> %s\n", rec.Name, rec.Value)
	}
}

// HandleNameResolveCommand handles the resolve command. The name may be
// a key CID ("k51...") or a bare peer identity ("12D3Koo...").
func HandleNameResolveCommand(name, endpoint, format string, timeout time.Duration) {
	id := decodeNameArg(name)

	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resolved, err := client.NameResolve(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve name: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string]string{"cid": resolved.String()})
	} else {
		fmt.Println(resolved.String())
	}
}

// HandleIDCommand handles the id command
func HandleIDCommand(endpoint, format string, timeout time.Duration) {
	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, err := client.ID(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get peer identity: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string]string{"peer_id": cidutil.EncodePeerID(id)})
	} else {
		fmt.Printf("🆔 Peer ID: %s\n", cidutil.EncodePeerID(id))
	}
}

// decodeNameArg accepts both identifier forms a naming key appears in.
func decodeNameArg(s string) cid.Cid {
	id, err := cidutil.DecodeCID(s)
	if err == nil {
		return id
	}
	id, err = cidutil.DecodePeerID(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid name %q: %v\n", s, err)
		os.Exit(1)
	}
	return id
}

// flagValue returns the argument following flag, or def when absent.
func flagValue(args []string, flag, def string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return def
}
