package token

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0xff, 0xfe, 0xfd},
		[]byte("plain text token"),
		{0xfb, 0xef, 0xff, 0x00, 0x01, 0x02}, // would produce + and / in std base64
	}
	for _, raw := range cases {
		encoded := EncodeForTransport(raw)
		decoded, err := DecodeFromTransport(encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	}
}

func TestCodecRoundTripRandom(t *testing.T) {
	for size := 0; size <= 64; size++ {
		raw := make([]byte, size)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		decoded, err := DecodeFromTransport(EncodeForTransport(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	}
}

func TestCodecURLSafe(t *testing.T) {
	raw := make([]byte, 512)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	encoded := EncodeForTransport(raw)
	assert.False(t, strings.ContainsAny(encoded, "+/="), "encoded token must be URL-safe: %q", encoded)
}

func TestCodecEmptyInput(t *testing.T) {
	assert.Equal(t, "", EncodeForTransport(nil))
	decoded, err := DecodeFromTransport("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeFromTransport("not%valid!base64")
	assert.Error(t, err)
}
