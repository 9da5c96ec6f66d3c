//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
	"github.com/DeBrosOfficial/ipfsrpc/pkg/pubsub"
)

// GetDaemonURL returns the daemon RPC endpoint under test. Set IPFSRPC_API
// to point the suite at a non-default daemon.
func GetDaemonURL() string {
	if url := os.Getenv("IPFSRPC_API"); url != "" {
		return url
	}
	return "http://127.0.0.1:5001"
}

// SkipIfMissingDaemon skips the test when no daemon answers at the
// configured endpoint.
func SkipIfMissingDaemon(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.TrimSuffix(GetDaemonURL(), "/") + "/api/v0/id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		t.Skip("Daemon not accessible; tests skipped")
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skip("Daemon not accessible; tests skipped")
		return
	}
	resp.Body.Close()
}

// NewTestLogger creates a test logger for debugging
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := config.Build()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

// NewDaemonClient creates an RPC client configured for e2e tests
func NewDaemonClient(t *testing.T) *ipfs.Client {
	t.Helper()

	client, err := ipfs.NewClient(ipfs.Config{
		APIURL:  GetDaemonURL(),
		Timeout: 30 * time.Second,
	}, NewTestLogger(t))
	if err != nil {
		t.Fatalf("failed to create daemon client: %v", err)
	}
	return client
}

// NewPubsubManager creates a pubsub manager backed by a fresh client
func NewPubsubManager(t *testing.T) *pubsub.Manager {
	t.Helper()

	mgr := pubsub.NewManager(NewDaemonClient(t), NewTestLogger(t))
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// GenerateUniqueID generates a unique identifier for test resources
func GenerateUniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), rand.Intn(10000))
}

// GenerateTopic generates a unique topic name for pubsub tests
func GenerateTopic() string {
	return GenerateUniqueID("e2e_topic")
}

// Delay pauses execution for the specified duration
func Delay(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
