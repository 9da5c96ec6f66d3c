package ipfs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// wireResponse is implemented by the daemon response shapes in responses.go.
type wireResponse interface{ ok() bool }

var errMissingFields = errors.New("required response fields absent")

// decodeResponse classifies a fully buffered response body. The daemon
// answers every RPC on the same untagged JSON surface, so the body shape is
// the only reliable discriminator: first the expected shape, then the
// daemon error shape, and only then is the body declared undecodable. The
// order is part of the contract; a body satisfying the expected shape is
// never re-examined for an error shape.
func decodeResponse(body []byte, out wireResponse) error {
	err := json.Unmarshal(body, out)
	if err == nil && out.ok() {
		return nil
	}
	if err == nil {
		err = errMissingFields
	}
	if apiErr, isRemote := decodeAPIError(body); isRemote {
		return apiErr
	}
	return fmt.Errorf("%w: %v", ErrDecode, err)
}

// decodeInto decodes body into a caller-typed destination (dag/get). There
// is no required-field knowledge for arbitrary types, so unknown fields are
// rejected instead; otherwise an error payload would zero-fill any struct
// destination and read as success. Destinations must model every field of
// the stored document.
func decodeInto(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	err := dec.Decode(out)
	if err == nil {
		return nil
	}
	if apiErr, isRemote := decodeAPIError(body); isRemote {
		return apiErr
	}
	return fmt.Errorf("%w: %v", ErrDecode, err)
}

// decodeAPIError reports whether body carries the daemon's structured error
// shape. Presence of Message identifies it; no daemon result uses that key.
func decodeAPIError(body []byte) (*APIError, bool) {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return nil, false
	}
	return &apiErr, true
}
