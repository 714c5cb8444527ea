package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes builds a payload the content sniffer accepts as image/png.
func pngBytes(seed byte) []byte {
	header := []byte("\x89PNG\r\n\x1a\n")
	body := make([]byte, 256)
	for i := range body {
		body[i] = byte(i) ^ seed
	}
	return append(header, body...)
}

func TestComputeFingerprintDeterministic(t *testing.T) {
	img := pngBytes(7)

	first, err := ComputeFingerprint(img)
	require.NoError(t, err)

	// Byte-identical re-upload, fresh buffer: must hit the same key.
	clone := append([]byte(nil), img...)
	second, err := ComputeFingerprint(clone)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, string(first), 64)
}

func TestComputeFingerprintSensitivity(t *testing.T) {
	img := pngBytes(7)
	base, err := ComputeFingerprint(img)
	require.NoError(t, err)

	// Flip one byte at a time past the header; every mutation must land on a
	// different fingerprint.
	for i := 16; i < len(img); i += 3 {
		mutated := append([]byte(nil), img...)
		mutated[i] ^= 0x01
		fp, err := ComputeFingerprint(mutated)
		require.NoError(t, err)
		assert.NotEqual(t, base, fp, "flip at offset %d collided", i)
	}
}

func TestComputeFingerprintRejectsInvalidInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"too short": []byte("\x89PNG"),
		"not image": []byte("this is just plain text, long enough to pass the size check only......"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ComputeFingerprint(data)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
