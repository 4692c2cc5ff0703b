package dataurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", Encode("text/plain", []byte("hello")))
	assert.Equal(t, "data:application/octet-stream;base64,", Encode("", nil))
}

func TestDecode(t *testing.T) {
	mediaType, payload, err := Decode(Encode("image/png", []byte{0x89, 'P', 'N', 'G'}))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, payload)
}

func TestDecodeMalformed(t *testing.T) {
	for _, url := range []string{
		"http://example.com",
		"data:text/plain;base64",
		"data:text/plain,hello",
		"data:text/plain;base64,***",
	} {
		_, _, err := Decode(url)
		assert.ErrorIs(t, err, ErrMalformed, url)
	}
}
