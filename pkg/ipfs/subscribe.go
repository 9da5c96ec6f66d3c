package ipfs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
)

// maxLineBytes caps the line assembly buffer. Payloads travel base64-coded
// inside a JSON wrapper, so this comfortably covers the daemon's own
// message size limit.
const maxLineBytes = 8 << 20

// Message is one pubsub message received on a subscription.
type Message struct {
	// From is the sender's peer identity, normalised to a CID.
	From cid.Cid
	// Data is the decoded payload.
	Data []byte
}

type item struct {
	msg *Message
	err error
}

// Subscription is a live pubsub subscription. Messages arrive through Next
// in wire order. The stream runs until Cancel is called, the context passed
// to PubsubSubscribe ends, or the daemon closes the connection; it cannot
// be restarted, and messages sent while no subscription was open are not
// replayed.
type Subscription struct {
	topic string
	body  io.ReadCloser
	items chan item
	done  chan struct{}
	once  sync.Once
}

// PubsubSubscribe opens a long-lived subscription on topic. The returned
// subscription stays open across the configured request timeout; its
// lifetime is bounded by ctx and by Cancel.
func (c *Client) PubsubSubscribe(ctx context.Context, topic string) (*Subscription, error) {
	values := url.Values{}
	values.Set("arg", cidutil.EncodeMultibase([]byte(topic)))

	reqURL := c.apiBase + "pubsub/sub?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub/sub request: %w", err)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubsub/sub request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if apiErr, ok := decodeAPIError(body); ok {
			return nil, apiErr
		}
		return nil, fmt.Errorf("pubsub/sub failed with status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("subscription opened", zap.String("topic", topic))

	sub := &Subscription{
		topic: topic,
		body:  resp.Body,
		items: make(chan item),
		done:  make(chan struct{}),
	}
	go sub.run()
	return sub, nil
}

// Topic returns the topic this subscription listens on.
func (s *Subscription) Topic() string {
	return s.topic
}

// Next returns the next message. It blocks until a message arrives, ctx is
// done, or the subscription reaches a terminal state.
//
// A returned error matching ErrRemote or ErrSubscriptionClosed is terminal.
// Any other error concerns a single undecodable line; the subscription is
// still live and Next may be called again.
func (s *Subscription) Next(ctx context.Context) (*Message, error) {
	// Checked first so a cancelled subscription never hands out an item
	// that was already in flight.
	select {
	case <-s.done:
		return nil, ErrSubscriptionClosed
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrSubscriptionClosed
	case it, ok := <-s.items:
		if !ok {
			return nil, ErrSubscriptionClosed
		}
		return it.msg, it.err
	}
}

// Cancel tears the subscription down and releases its connection. It is
// safe to call concurrently with Next and more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.body.Close()
	})
}

// run assembles NDJSON lines off the response body and decodes each one
// independently. A line that decodes as neither a message nor a daemon
// error yields one error item and the stream carries on; a daemon error
// line is the daemon's own termination signal and ends the stream. Nothing
// beyond the current line is buffered.
func (s *Subscription) run() {
	defer close(s.items)
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := decodeSubscriptionLine(line)
		select {
		case s.items <- item{msg: msg, err: err}:
		case <-s.done:
			return
		}

		if err != nil && errors.Is(err, ErrRemote) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case s.items <- item{err: fmt.Errorf("%w: stream failed: %v", ErrSubscriptionClosed, err)}:
		case <-s.done:
		}
	}
}

// decodeSubscriptionLine classifies one stream line with the same
// success-shape-then-error-shape strategy used for buffered responses,
// then rebuilds the sender identity and payload from their wire encodings.
func decodeSubscriptionLine(line []byte) (*Message, error) {
	var event pubsubEvent
	if err := decodeResponse(line, &event); err != nil {
		return nil, err
	}

	from, err := cidutil.DecodePeerID(event.From)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message sender: %w", err)
	}
	payload, err := cidutil.DecodeMultibase(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message payload: %w", err)
	}
	return &Message{From: from, Data: payload}, nil
}
