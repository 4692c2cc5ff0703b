package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	scheme       = "data:"
	base64Marker = ";base64"

	// DefaultMediaType is used when no MIME type is known for the payload
	DefaultMediaType = "application/octet-stream"
)

var ErrMalformed = errors.New("malformed data url")

// Encode renders payload as data:<mediaType>;base64,<payload>
func Encode(mediaType string, payload []byte) string {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	var b strings.Builder
	b.Grow(len(scheme) + len(mediaType) + len(base64Marker) + 1 + base64.StdEncoding.EncodedLen(len(payload)))
	b.WriteString(scheme)
	b.WriteString(mediaType)
	b.WriteString(base64Marker)
	b.WriteByte(',')
	b.WriteString(base64.StdEncoding.EncodeToString(payload))
	return b.String()
}

// Decode splits a base64 data URL back into its media type and payload
func Decode(url string) (string, []byte, error) {
	if !strings.HasPrefix(url, scheme) {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrMalformed, scheme)
	}
	header, data, ok := strings.Cut(url[len(scheme):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing ','", ErrMalformed)
	}
	mediaType, isBase64 := strings.CutSuffix(header, base64Marker)
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}
	return mediaType, payload, nil
}
