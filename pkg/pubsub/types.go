package pubsub

import (
	"fmt"
	"sync/atomic"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/ipfs"
)

// MessageHandler represents a message handler function signature.
// Each handler is called when a message arrives on a subscribed topic.
// Multiple handlers can be registered for the same topic, and each will
// receive every message. Handlers should return an error only for critical
// failures; the error is logged but does not stop other handlers.
type MessageHandler func(topic string, msg *ipfs.Message) error

// HandlerID uniquely identifies a handler registration.
// Each call to Subscribe generates a new HandlerID, allowing
// multiple subscribers to the same topic with independent lifecycles.
// Unsubscribe operations are ref-counted per topic.
type HandlerID string

var handlerSeq atomic.Uint64

func generateHandlerID() HandlerID {
	return HandlerID(fmt.Sprintf("handler-%d", handlerSeq.Add(1)))
}
