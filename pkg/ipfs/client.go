// Package ipfs is a client for the content-addressed storage daemon's local
// HTTP RPC surface. It covers content add/cat, pinning, structured dag
// objects, key listing, name publish/resolve and pubsub, returning parsed
// CIDs instead of wire strings wherever the daemon answers with an
// identifier.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/cidutil"
)

// DefaultAPIURL is the daemon RPC endpoint used when none is configured.
const DefaultAPIURL = "http://127.0.0.1:5001/api/v0/"

// Client talks to the daemon RPC endpoint. It holds no per-call state, so a
// single instance is safe for concurrent use.
type Client struct {
	apiBase    string
	httpClient *http.Client
	// streamClient carries subscription requests, which outlive any sane
	// request timeout and are bounded by the caller's context instead.
	streamClient *http.Client
	logger       *zap.Logger
}

// Config holds configuration for the RPC client
type Config struct {
	// APIURL is the daemon RPC endpoint, as an http(s) URL or a TCP
	// multiaddr ("/ip4/127.0.0.1/tcp/5001")
	// If empty, defaults to DefaultAPIURL
	APIURL string

	// Timeout bounds buffered calls; subscriptions are exempt
	// If zero, defaults to 60 seconds
	Timeout time.Duration
}

// NewClient creates a new daemon RPC client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := resolveAPIURL(apiURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Client{
		apiBase:      base,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
		logger:       logger,
	}, nil
}

// post issues one RPC request. Every daemon endpoint is POST-only.
func (c *Client) post(ctx context.Context, opPath string, values url.Values, contentType string, body io.Reader) (*http.Response, error) {
	reqURL := c.apiBase + opPath
	if len(values) > 0 {
		reqURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", opPath, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", opPath, err)
	}
	return resp, nil
}

// postBuffered issues one RPC request and buffers the whole response body
// for the envelope decoder. The HTTP status is deliberately not consulted:
// the daemon reports failure through the error body shape, which
// decodeResponse classifies.
func (c *Client) postBuffered(ctx context.Context, opPath string, values url.Values, contentType string, body io.Reader) ([]byte, error) {
	resp, err := c.post(ctx, opPath, values, contentType, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", opPath, err)
	}
	return raw, nil
}

// Add stores the bytes read from r and returns their CID. The content is
// left unpinned and the returned identifier is version 1; pin explicitly
// via PinAdd when the content must survive garbage collection.
func (c *Client) Add(ctx context.Context, r io.Reader) (cid.Cid, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// Stream the upload instead of buffering it, so arbitrarily large
	// content does not need to fit in memory.
	go func() {
		part, err := writer.CreateFormFile("path", "path")
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	values := url.Values{}
	values.Set("pin", "false")
	values.Set("cid-version", "1")

	body, err := c.postBuffered(ctx, "add", values, writer.FormDataContentType(), pr)
	if err != nil {
		return cid.Undef, err
	}

	var res addResponse
	if err := decodeResponse(body, &res); err != nil {
		return cid.Undef, err
	}

	id, err := cidutil.DecodeCID(res.Hash)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to decode add response identifier: %w", err)
	}
	return id, nil
}

// Cat fetches the raw bytes behind id. A non-empty path is appended
// verbatim to the identifier for sub-path retrieval within a structured
// object, e.g. "/link/name".
func (c *Client) Cat(ctx context.Context, id cid.Cid, path string) ([]byte, error) {
	values := url.Values{}
	values.Set("arg", id.String()+path)

	resp, err := c.post(ctx, "cat", values, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cat response: %w", err)
	}

	// cat answers with raw content, not JSON, so the status code is the
	// only success signal for this one operation.
	if resp.StatusCode != http.StatusOK {
		if apiErr, ok := decodeAPIError(body); ok {
			return nil, apiErr
		}
		return nil, fmt.Errorf("cat failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// PinAdd pins id so it survives garbage collection. With recursive set,
// everything reachable from id is pinned as well. Returns the affected
// identifiers as the daemon reports them.
func (c *Client) PinAdd(ctx context.Context, id cid.Cid, recursive bool) ([]string, error) {
	return c.pin(ctx, "pin/add", id, recursive)
}

// PinRm removes the pin on id. With recursive set, the recursive pin record
// is removed. Returns the affected identifiers as the daemon reports them.
func (c *Client) PinRm(ctx context.Context, id cid.Cid, recursive bool) ([]string, error) {
	return c.pin(ctx, "pin/rm", id, recursive)
}

func (c *Client) pin(ctx context.Context, opPath string, id cid.Cid, recursive bool) ([]string, error) {
	values := url.Values{}
	values.Set("arg", id.String())
	values.Set("recursive", fmt.Sprintf("%t", recursive))

	body, err := c.postBuffered(ctx, opPath, values, "", nil)
	if err != nil {
		return nil, err
	}

	var res pinResponse
	if err := decodeResponse(body, &res); err != nil {
		return nil, err
	}
	return res.Pins, nil
}

// DagPut serializes node to JSON, stores it as a structured dag object in
// canonical binary form, and returns the object's CID.
func (c *Client) DagPut(ctx context.Context, node any) (cid.Cid, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to serialize dag node: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("object data", "object data")
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return cid.Undef, fmt.Errorf("failed to write dag node: %w", err)
	}
	if err := writer.Close(); err != nil {
		return cid.Undef, fmt.Errorf("failed to close writer: %w", err)
	}

	values := url.Values{}
	values.Set("store-codec", "dag-cbor")
	values.Set("input-codec", "dag-json")

	body, err := c.postBuffered(ctx, "dag/put", values, writer.FormDataContentType(), &buf)
	if err != nil {
		return cid.Undef, err
	}

	var res dagPutResponse
	if err := decodeResponse(body, &res); err != nil {
		return cid.Undef, err
	}

	id, err := cidutil.DecodeCID(res.Cid.Target)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to decode dag/put response identifier: %w", err)
	}
	return id, nil
}

// DagGet fetches the structured dag object behind id and decodes it into
// out. A non-empty path is appended verbatim to the identifier, selecting a
// sub-node. The destination must model every field of the stored object;
// see decodeInto.
func (c *Client) DagGet(ctx context.Context, id cid.Cid, path string, out any) error {
	values := url.Values{}
	values.Set("arg", id.String()+path)
	values.Set("output-codec", "dag-json")

	body, err := c.postBuffered(ctx, "dag/get", values, "", nil)
	if err != nil {
		return err
	}
	return decodeInto(body, out)
}

// KeyList returns the daemon's naming keys as a name-to-identifier map. The
// identifier base is pinned so the mapping is stable across daemon
// versions. Entries whose identifier fails to decode are dropped rather
// than failing the whole listing.
func (c *Client) KeyList(ctx context.Context) (map[string]cid.Cid, error) {
	values := url.Values{}
	values.Set("l", "true")
	values.Set("ipns-base", "base32")

	body, err := c.postBuffered(ctx, "key/list", values, "", nil)
	if err != nil {
		return nil, err
	}

	var res keyListResponse
	if err := decodeResponse(body, &res); err != nil {
		return nil, err
	}

	keys := make(map[string]cid.Cid, len(res.Keys))
	for _, k := range res.Keys {
		id, err := cidutil.DecodeCID(k.ID)
		if err != nil {
			c.logger.Debug("dropping key with undecodable identifier",
				zap.String("name", k.Name),
				zap.Error(err))
			continue
		}
		keys[k.Name] = id
	}
	return keys, nil
}

// NameRecord is the daemon's confirmation of a published name. Both fields
// are display strings; the daemon echoes the name it published under and
// the path the name now points at.
type NameRecord struct {
	Name  string
	Value string
}

// NamePublish points the naming key identified by key at id. Records are
// published with a six month lifetime.
func (c *Client) NamePublish(ctx context.Context, id cid.Cid, key string) (*NameRecord, error) {
	values := url.Values{}
	values.Set("arg", id.String())
	values.Set("lifetime", "4320h")
	values.Set("key", key)
	values.Set("ipns-base", "base32")

	body, err := c.postBuffered(ctx, "name/publish", values, "", nil)
	if err != nil {
		return nil, err
	}

	var res namePublishResponse
	if err := decodeResponse(body, &res); err != nil {
		return nil, err
	}
	return &NameRecord{Name: res.Name, Value: res.Value}, nil
}

// NameResolve follows the naming record behind name to the CID it currently
// points at.
func (c *Client) NameResolve(ctx context.Context, name cid.Cid) (cid.Cid, error) {
	values := url.Values{}
	values.Set("arg", name.String())

	body, err := c.postBuffered(ctx, "name/resolve", values, "", nil)
	if err != nil {
		return cid.Undef, err
	}

	var res nameResolveResponse
	if err := decodeResponse(body, &res); err != nil {
		return cid.Undef, err
	}

	id, err := cidutil.DecodeCID(strings.TrimPrefix(res.Path, "/ipfs/"))
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to decode resolved path %q: %w", res.Path, err)
	}
	return id, nil
}

// ID returns the daemon's own peer identity as a CID. The daemon reports
// the identity in bare base58btc form, which is re-encoded the same way
// subscription senders are.
func (c *Client) ID(ctx context.Context) (cid.Cid, error) {
	body, err := c.postBuffered(ctx, "id", nil, "", nil)
	if err != nil {
		return cid.Undef, err
	}

	var res idResponse
	if err := decodeResponse(body, &res); err != nil {
		return cid.Undef, err
	}

	peer, err := cidutil.DecodePeerID(res.ID)
	if err != nil {
		return cid.Undef, fmt.Errorf("failed to decode peer identity: %w", err)
	}
	return peer, nil
}

// PubsubPublish broadcasts data on the given topic. The topic travels
// multibase-encoded so arbitrary topic bytes survive the query string.
func (c *Client) PubsubPublish(ctx context.Context, topic string, data []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("data", "data")
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	values := url.Values{}
	values.Set("arg", cidutil.EncodeMultibase([]byte(topic)))

	resp, err := c.post(ctx, "pubsub/pub", values, writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// A successful publish has an empty body, so status is the success
	// signal here, as with cat.
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if apiErr, ok := decodeAPIError(body); ok {
			return apiErr
		}
		return fmt.Errorf("pubsub/pub failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
