// Package token issues bearer tokens and encodes single-use security tokens
// for transport.
package token

import "encoding/base64"

// EncodeForTransport converts raw token bytes into a URL-safe string suitable
// for embedding in email links and query parameters.
func EncodeForTransport(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeFromTransport reverses EncodeForTransport. For every byte sequence x,
// DecodeFromTransport(EncodeForTransport(x)) returns x, including empty input.
func DecodeFromTransport(encoded string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(encoded)
}
