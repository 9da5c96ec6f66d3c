package main

import (
	"fmt"
	"os"
	"time"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cli"
)

var (
	endpoint = getEnvDefault("IPFSRPC_API", "")
	timeout  = 60 * time.Second
	format   = "text"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args := parseGlobalFlags(os.Args[2:])

	switch command {
	case "version":
		fmt.Printf("ipfsrpc %s", version)
		if commit != "" {
			fmt.Printf(" (commit %s)", commit)
		}
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()
		return

	// Storage commands
	case "add":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: ipfsrpc add <file>\n")
			os.Exit(1)
		}
		cli.HandleAddCommand(args[0], endpoint, format, timeout)
	case "cat":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: ipfsrpc cat <cid[/path]>\n")
			os.Exit(1)
		}
		cli.HandleCatCommand(args[0], endpoint, timeout)
	case "pin":
		cli.HandlePinCommand(args, endpoint, format, timeout)
	case "unpin":
		cli.HandleUnpinCommand(args, endpoint, format, timeout)

	// DAG commands
	case "dag-put":
		filePath := "-"
		if len(args) > 0 {
			filePath = args[0]
		}
		cli.HandleDagPutCommand(filePath, endpoint, format, timeout)
	case "dag-get":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: ipfsrpc dag-get <cid[/path]>\n")
			os.Exit(1)
		}
		cli.HandleDagGetCommand(args[0], endpoint, timeout)

	// Naming commands
	case "keys":
		cli.HandleKeysCommand(endpoint, format, timeout)
	case "publish":
		cli.HandleNamePublishCommand(args, endpoint, format, timeout)
	case "resolve":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: ipfsrpc resolve <name>\n")
			os.Exit(1)
		}
		cli.HandleNameResolveCommand(args[0], endpoint, format, timeout)

	// Node commands
	case "id":
		cli.HandleIDCommand(endpoint, format, timeout)

	// PubSub commands
	case "pub":
		cli.HandlePubCommand(args, endpoint, timeout)
	case "sub":
		cli.HandleSubCommand(args, endpoint, timeout)

	// Help
	case "help", "--help", "-h":
		showHelp()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		showHelp()
		os.Exit(1)
	}
}

// parseGlobalFlags consumes the global flags and returns what remains
// as positional arguments. Command flags like --direct pass through.
func parseGlobalFlags(args []string) []string {
	positional := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--api":
			if i+1 < len(args) {
				endpoint = args[i+1]
				i++
			}
		case "-f", "--format":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "-t", "--timeout":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					timeout = d
				}
				i++
			}
		default:
			positional = append(positional, args[i])
		}
	}
	return positional
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func showHelp() {
	fmt.Printf("IPFS RPC CLI - Kubo Daemon RPC Tool\n\n")
	fmt.Printf("Usage: ipfsrpc <command> [args...]\n\n")

	fmt.Printf("📦 Storage:\n")
	fmt.Printf("  add <file>                    - Add file content (use - for stdin)\n")
	fmt.Printf("  cat <cid[/path]>              - Print content to stdout\n")
	fmt.Printf("  pin <cid> [--direct]          - Pin content (recursive by default)\n")
	fmt.Printf("  unpin <cid> [--direct]        - Unpin content\n\n")

	fmt.Printf("🔗 DAG:\n")
	fmt.Printf("  dag-put [file]                - Store a JSON node (stdin by default)\n")
	fmt.Printf("  dag-get <cid[/path]>          - Fetch a node as JSON\n\n")

	fmt.Printf("🔑 Naming:\n")
	fmt.Printf("  keys                          - List naming keys\n")
	fmt.Printf("  publish <cid> [--key <name>]  - Point a naming key at a CID\n")
	fmt.Printf("  resolve <name>                - Resolve a name to its CID\n\n")

	fmt.Printf("🌐 Node:\n")
	fmt.Printf("  id                            - Show the daemon's peer ID\n\n")

	fmt.Printf("📡 PubSub:\n")
	fmt.Printf("  pub <topic> <message>         - Publish message\n")
	fmt.Printf("  sub <topic> [<topic>...]      - Subscribe and print messages (Ctrl-C to stop)\n\n")

	fmt.Printf("Global Flags:\n")
	fmt.Printf("  --api <url>                   - Daemon RPC endpoint (default: http://127.0.0.1:5001)\n")
	fmt.Printf("  -f, --format <format>         - Output format: text, json (default: text)\n")
	fmt.Printf("  -t, --timeout <duration>      - Operation timeout (default: 60s)\n\n")

	fmt.Printf("Environment:\n")
	fmt.Printf("  IPFSRPC_API                   - Daemon RPC endpoint, overridden by --api\n\n")

	fmt.Printf("Examples:\n")
	fmt.Printf("  # Add a file and read it back\n")
	fmt.Printf("  ipfsrpc add notes.txt\n")
	fmt.Printf("  ipfsrpc cat bafybeih...\n\n")

	fmt.Printf("  # Store and fetch a dag-cbor node\n")
	fmt.Printf("  echo '{\"data\":\"This is a test\"}' | ipfsrpc dag-put\n")
	fmt.Printf("  ipfsrpc dag-get bafyrei.../data\n\n")

	fmt.Printf("  # Pubsub roundtrip\n")
	fmt.Printf("  ipfsrpc sub test\n")
	fmt.Printf("  ipfsrpc pub test \"Hello World!\"\n")
}
