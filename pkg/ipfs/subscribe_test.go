package ipfs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
)

// eventLine builds one NDJSON subscription line the way the daemon emits
// them, including the extra fields the client is expected to ignore.
func eventLine(from string, payload []byte) string {
	return fmt.Sprintf(`{"from":"%s","data":"%s","seqno":"AAEC","topicIDs":["udGVzdA"]}`+"\n",
		from, cidutil.EncodeMultibase(payload))
}

func TestPubsubSubscribe(t *testing.T) {
	t.Run("receives_messages", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v0/pubsub/sub" {
				t.Errorf("Expected path '/api/v0/pubsub/sub', got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("arg"); got != "udGVzdA" {
				t.Errorf("Expected arg=udGVzdA, got %q", got)
			}

			flusher, ok := w.(http.Flusher)
			if !ok {
				t.Error("Response writer does not support flushing")
				return
			}
			w.Write([]byte(eventLine(testPeerID, []byte("Hello World!"))))
			flusher.Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		sub, err := client.PubsubSubscribe(context.Background(), "test")
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
		defer sub.Cancel()

		if sub.Topic() != "test" {
			t.Errorf("Expected topic 'test', got %q", sub.Topic())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		msg, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Failed to receive message: %v", err)
		}
		if string(msg.Data) != "Hello World!" {
			t.Errorf("Expected payload 'Hello World!', got %q", msg.Data)
		}
		if got := cidutil.EncodePeerID(msg.From); got != testPeerID {
			t.Errorf("Expected sender %s, got %s", testPeerID, got)
		}
	})

	t.Run("undecodable_line_is_not_fatal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(eventLine(testPeerID, []byte("one"))))
			w.Write([]byte(eventLine(testPeerID, []byte("two"))))
			w.Write([]byte(eventLine("!!not-base58!!", []byte("lost"))))
			w.Write([]byte(eventLine(testPeerID, []byte("three"))))
			w.Write([]byte(eventLine(testPeerID, []byte("four"))))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		sub, err := client.PubsubSubscribe(context.Background(), "test")
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
		defer sub.Cancel()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var got []string
		var lineErrs int
		for {
			msg, err := sub.Next(ctx)
			if errors.Is(err, ErrSubscriptionClosed) {
				break
			}
			if err != nil {
				lineErrs++
				continue
			}
			got = append(got, string(msg.Data))
		}

		want := []string{"one", "two", "three", "four"}
		if len(got) != len(want) {
			t.Fatalf("Expected %d messages, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Expected message %d to be %q, got %q", i, want[i], got[i])
			}
		}
		if lineErrs != 1 {
			t.Errorf("Expected exactly one per-line error, got %d", lineErrs)
		}
	})

	t.Run("error_line_ends_stream", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flusher := w.(http.Flusher)
			w.Write([]byte(eventLine(testPeerID, []byte("one"))))
			w.Write([]byte(`{"Message":"pubsub shutting down","Code":0,"Type":"error"}` + "\n"))
			flusher.Flush()
			<-r.Context().Done()
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		sub, err := client.PubsubSubscribe(context.Background(), "test")
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
		defer sub.Cancel()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := sub.Next(ctx); err != nil {
			t.Fatalf("Failed to receive first message: %v", err)
		}

		_, err = sub.Next(ctx)
		if !errors.Is(err, ErrRemote) {
			t.Fatalf("Expected remote error, got %v", err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "pubsub shutting down" {
			t.Errorf("Expected daemon message to be preserved, got %v", err)
		}

		if _, err := sub.Next(ctx); !errors.Is(err, ErrSubscriptionClosed) {
			t.Errorf("Expected subscription to be closed after error line, got %v", err)
		}
	})

	t.Run("cancel_unblocks_next", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Hold the stream open without sending anything.
			<-r.Context().Done()
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		sub, err := client.PubsubSubscribe(context.Background(), "test")
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}

		go func() {
			time.Sleep(50 * time.Millisecond)
			sub.Cancel()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := sub.Next(ctx); !errors.Is(err, ErrSubscriptionClosed) {
			t.Fatalf("Expected ErrSubscriptionClosed, got %v", err)
		}

		// Further calls stay closed, and Cancel stays idempotent.
		sub.Cancel()
		if _, err := sub.Next(ctx); !errors.Is(err, ErrSubscriptionClosed) {
			t.Errorf("Expected ErrSubscriptionClosed on repeat call, got %v", err)
		}
	})

	t.Run("context_cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		sub, err := client.PubsubSubscribe(context.Background(), "test")
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
		defer sub.Cancel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := sub.Next(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	})

	t.Run("daemon_rejects_subscription", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"Message":"experimental pubsub feature not enabled","Code":0,"Type":"error"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server.URL)
		_, err := client.PubsubSubscribe(context.Background(), "test")
		if !errors.Is(err, ErrRemote) {
			t.Fatalf("Expected remote error, got %v", err)
		}
	})
}
