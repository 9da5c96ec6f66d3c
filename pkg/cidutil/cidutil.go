// Package cidutil converts between the string identifier forms used on the
// daemon RPC wire and parsed CIDs.
//
// The daemon speaks three string forms: multibase-prefixed CIDs ("bafy...",
// "k51..."), legacy base58 v0 CIDs ("Qm..."), and bare base58btc peer
// identities ("12D3Koo...") which carry a multihash with no version or codec
// prefix. Peer identities are normalised into CIDv1 so callers handle a
// single identifier type everywhere.
package cidutil

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ErrMalformedID is wrapped by every decode failure in this package so
// callers can classify identifier errors with errors.Is.
var ErrMalformedID = errors.New("malformed identifier")

// peerIDCodec is the multicodec tag applied when wrapping a bare peer
// identity multihash into a CID (id, pubsub senders).
const peerIDCodec = 0x70

// DecodeCID parses a CID in any multibase encoding, or the legacy base58
// "Qm..." v0 form. Bare peer identity strings are not CIDs and are rejected;
// use DecodePeerID for those.
func DecodeCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %q: %v", ErrMalformedID, s, err)
	}
	return c, nil
}

// DecodePeerID parses a bare base58btc peer identity ("12D3Koo...") and
// wraps the embedded multihash into a CIDv1. The multihash framing is
// validated; arbitrary base58 payloads are rejected.
func DecodePeerID(s string) (cid.Cid, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: peer identity %q: %v", ErrMalformedID, s, err)
	}
	mh, err := multihash.Cast(raw)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: peer identity %q: %v", ErrMalformedID, s, err)
	}
	return cid.NewCidV1(peerIDCodec, mh), nil
}

// EncodePeerID renders a peer identity CID back to the bare base58btc form
// the daemon uses in wire messages. It is the inverse of DecodePeerID.
func EncodePeerID(c cid.Cid) string {
	return base58.Encode(c.Hash())
}

// EncodeMultibase encodes raw bytes as a base64url multibase string. The
// daemon requires this encoding for pubsub topics and message payloads.
func EncodeMultibase(data []byte) string {
	s, err := multibase.Encode(multibase.Base64url, data)
	if err != nil {
		// Encode only fails on an unknown base; Base64url is always known.
		return ""
	}
	return s
}

// DecodeMultibase decodes a multibase string in whatever base its prefix
// declares. The daemon emits base64url, but any registered base is accepted.
func DecodeMultibase(s string) ([]byte, error) {
	_, data, err := multibase.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: multibase %q: %v", ErrMalformedID, s, err)
	}
	return data, nil
}
