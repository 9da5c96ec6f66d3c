package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/config"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/logging"
)

// HandleAddCommand handles the add command
func HandleAddCommand(filePath, endpoint, format string, timeout time.Duration) {
	var reader io.Reader
	if filePath == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
	}

	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, err := client.Add(ctx, reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add content: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string]string{"cid": id.String()})
	} else {
		fmt.Println(id.String())
	}
}

// HandleCatCommand handles the cat command. The ref may carry a path
// suffix, e.g. bafy.../dir/file.txt
func HandleCatCommand(ref, endpoint string, timeout time.Duration) {
	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, path := splitRef(ref)
	data, err := client.Cat(ctx, id, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to cat content: %v\n", err)
		os.Exit(1)
	}

	os.Stdout.Write(data)
}

// HandlePinCommand handles the pin command
func HandlePinCommand(args []string, endpoint, format string, timeout time.Duration) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: ipfsrpc pin <cid> [--direct]\n")
		os.Exit(1)
	}
	id := decodeCIDArg(args[0])
	recursive := !hasFlag(args[1:], "--direct")

	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pins, err := client.PinAdd(ctx, id, recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to pin content: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string][]string{"pins": pins})
	} else {
		for _, pin := range pins {
			fmt.Printf("pinned %s\n", pin)
		}
	}
}

// HandleUnpinCommand handles the unpin command
func HandleUnpinCommand(args []string, endpoint, format string, timeout time.Duration) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: ipfsrpc unpin <cid> [--direct]\n")
		os.Exit(1)
	}
	id := decodeCIDArg(args[0])
	recursive := !hasFlag(args[1:], "--direct")

	client, _, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pins, err := client.PinRm(ctx, id, recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unpin content: %v\n", err)
		os.Exit(1)
	}

	if format == "json" {
		printJSON(map[string][]string{"pins": pins})
	} else {
		for _, pin := range pins {
			fmt.Printf("unpinned %s\n", pin)
		}
	}
}

// Helper functions

// createClient builds an RPC client from the config file, the IPFSRPC_API
// environment variable and the --api flag, in ascending priority.
func createClient(endpoint string, timeout time.Duration) (*ipfs.Client, *logging.ColoredLogger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if endpoint != "" {
		cfg.API.URL = endpoint
	}
	if timeout > 0 {
		cfg.API.Timeout = config.Duration(timeout)
	}

	logger, err := cfg.Logging.Build(logging.ComponentCLI)
	if err != nil {
		return nil, nil, err
	}

	client, err := ipfs.NewClient(ipfs.Config{
		APIURL:  cfg.API.URL,
		Timeout: cfg.API.Timeout.Std(),
	}, logger.Logger)
	if err != nil {
		return nil, nil, err
	}

	return client, logger, nil
}

// loadConfig reads ~/.ipfsrpc/client.yaml when present, else defaults.
func loadConfig() (*config.Config, error) {
	path, err := config.DefaultPath("client.yaml")
	if err != nil {
		return config.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		return nil, fmt.Errorf("invalid config at %s", path)
	}
	return cfg, nil
}

func decodeCIDArg(s string) cid.Cid {
	id, err := cidutil.DecodeCID(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid content identifier %q: %v\n", s, err)
		os.Exit(1)
	}
	return id
}

// splitRef splits "cid/sub/path" into the CID and its "/sub/path" suffix.
func splitRef(ref string) (cid.Cid, string) {
	base, path, found := strings.Cut(ref, "/")
	id := decodeCIDArg(base)
	if !found {
		return id, ""
	}
	return id, "/" + path
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}
