package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
)

// Subscribe subscribes to a topic with a handler.
// Returns a HandlerID that can be used to unsubscribe this specific handler.
// Multiple handlers can subscribe to the same topic; they share one daemon
// stream. The stream outlives ctx: use Unsubscribe or Close to stop it.
func (m *Manager) Subscribe(ctx context.Context, topic string, handler MessageHandler) (HandlerID, error) {
	if handler == nil {
		return "", fmt.Errorf("handler must not be nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", fmt.Errorf("pubsub manager closed")
	}

	// Add handler to an existing subscription if we already hold a stream
	if topicSub, exists := m.subscriptions[topic]; exists {
		handlerID := generateHandlerID()
		topicSub.mu.Lock()
		topicSub.handlers[handlerID] = handler
		topicSub.refCount++
		topicSub.mu.Unlock()
		return handlerID, nil
	}

	// The stream must survive the caller's ctx, so it gets its own.
	subCtx, cancel := context.WithCancel(context.Background())

	sub, err := m.client.PubsubSubscribe(subCtx, topic)
	if err != nil {
		cancel()
		return "", fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	handlerID := generateHandlerID()
	topicSub := &topicSubscription{
		sub:      sub,
		cancel:   cancel,
		handlers: map[HandlerID]MessageHandler{handlerID: handler},
		refCount: 1,
	}
	m.subscriptions[topic] = topicSub

	go m.run(subCtx, topic, topicSub)

	return handlerID, nil
}

// run reads the subscription stream and fans messages out to all handlers.
func (m *Manager) run(ctx context.Context, topic string, topicSub *topicSubscription) {
	defer topicSub.sub.Cancel()

	for {
		msg, err := topicSub.sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ipfs.ErrSubscriptionClosed) {
				m.logger.Debug("subscription reader stopped", zap.String("topic", topic))
				m.remove(topic, topicSub)
				return
			}
			if errors.Is(err, ipfs.ErrRemote) {
				m.logger.Error("daemon reported subscription error", zap.String("topic", topic), zap.Error(err))
				continue
			}
			m.logger.Warn("dropping undecodable message", zap.String("topic", topic), zap.Error(err))
			continue
		}

		topicSub.mu.RLock()
		handlers := make([]MessageHandler, 0, len(topicSub.handlers))
		for _, h := range topicSub.handlers {
			handlers = append(handlers, h)
		}
		topicSub.mu.RUnlock()

		for _, h := range handlers {
			if err := h(topic, msg); err != nil {
				m.logger.Warn("message handler failed", zap.String("topic", topic), zap.Error(err))
			}
		}
	}
}

// remove drops the subscription entry if it is still the current one for
// the topic, so a dead stream does not absorb future Subscribe calls.
func (m *Manager) remove(topic string, topicSub *topicSubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, exists := m.subscriptions[topic]; exists && current == topicSub {
		delete(m.subscriptions, topic)
	}
}

// Unsubscribe removes a single handler registration from a topic.
// The daemon stream is only cancelled when the last handler for the
// topic is removed. Unknown topics and handler IDs are not errors.
func (m *Manager) Unsubscribe(ctx context.Context, topic string, id HandlerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	topicSub, exists := m.subscriptions[topic]
	if !exists {
		return nil // Already unsubscribed
	}

	topicSub.mu.Lock()
	if _, registered := topicSub.handlers[id]; !registered {
		topicSub.mu.Unlock()
		return nil
	}
	delete(topicSub.handlers, id)
	topicSub.refCount--
	shouldCancel := topicSub.refCount <= 0
	topicSub.mu.Unlock()

	// Only cancel and remove when no subscribers remain
	if shouldCancel {
		topicSub.cancel()
		delete(m.subscriptions, topic)
	}

	return nil
}

// ListTopics returns all currently subscribed topics
func (m *Manager) ListTopics(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]string, 0, len(m.subscriptions))
	for topic := range m.subscriptions {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	return topics, nil
}
