package pubsub

import (
	"context"
	"fmt"
)

// Publish publishes a message to a topic
func (m *Manager) Publish(ctx context.Context, topic string, data []byte) error {
	if err := m.client.PubsubPublish(ctx, topic, data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
