package pubsub

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
)

// Manager handles pub/sub operations over a single daemon connection.
// It holds at most one subscription stream per topic and fans incoming
// messages out to every registered handler.
type Manager struct {
	client        *ipfs.Client
	logger        *zap.Logger
	subscriptions map[string]*topicSubscription
	mu            sync.RWMutex
	closed        bool
}

// topicSubscription holds one daemon stream and its registered handlers
type topicSubscription struct {
	sub      *ipfs.Subscription
	cancel   func()
	handlers map[HandlerID]MessageHandler
	refCount int
	mu       sync.RWMutex
}

// NewManager creates a new pubsub manager
func NewManager(client *ipfs.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:        client,
		logger:        logger,
		subscriptions: make(map[string]*topicSubscription),
	}
}

// Close cancels all subscriptions and their streams.
// The manager cannot be reused after closing.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, topicSub := range m.subscriptions {
		topicSub.cancel()
	}
	m.subscriptions = make(map[string]*topicSubscription)
	m.closed = true

	return nil
}
