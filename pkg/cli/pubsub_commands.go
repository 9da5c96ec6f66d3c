package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/pubsub"
)

// HandlePubCommand handles the pub command
func HandlePubCommand(args []string, endpoint string, timeout time.Duration) {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: ipfsrpc pub <topic> <message>\n")
		os.Exit(1)
	}
	topic := args[0]
	message := args[1]

	client, logger, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	mgr := pubsub.NewManager(client, logger.Logger)
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := mgr.Publish(ctx, topic, []byte(message)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to publish message: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Published message to topic: %s\n", topic)
}

// HandleSubCommand handles the sub command. It prints every message on
// the given topics until interrupted.
func HandleSubCommand(topics []string, endpoint string, timeout time.Duration) {
	if len(topics) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: ipfsrpc sub <topic> [<topic>...]\n")
		os.Exit(1)
	}

	client, logger, err := createClient(endpoint, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	mgr := pubsub.NewManager(client, logger.Logger)
	defer mgr.Close()

	handler := func(topic string, msg *ipfs.Message) error {
		fmt.Printf("📨 [%s] %s %s: %s\n",
			time.Now().Format("15:04:05"), topic, cidutil.EncodePeerID(msg.From), string(msg.Data))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, topic := range topics {
		if _, err := mgr.Subscribe(ctx, topic, handler); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to subscribe to topic %s: %v\n", topic, err)
			os.Exit(1)
		}
		fmt.Printf("🔔 Subscribed to topic: %s\n", topic)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("✅ Subscription ended")
}
