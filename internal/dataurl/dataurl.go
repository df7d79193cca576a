// Package dataurl decodes base64 data URLs such as clipboard images.
package dataurl

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/starford/quickseq/internal/apperr"
)

// Decode splits a data:<mime>;base64,<payload> URL into raw bytes and the
// declared MIME type. URL-safe base64 and missing padding are accepted.
func Decode(s string) ([]byte, string, error) {
	head, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing comma separator", apperr.ErrInvalidDataURL)
	}
	mime, err := mediaType(head)
	if err != nil {
		return nil, "", err
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrInvalidDataURL, err)
	}
	return data, mime, nil
}

// mediaType extracts the text between ':' and the first ';' of the header.
func mediaType(head string) (string, error) {
	_, rest, ok := strings.Cut(head, ":")
	if !ok {
		return "", fmt.Errorf("%w: missing media type", apperr.ErrInvalidDataURL)
	}
	mime, _, ok := strings.Cut(rest, ";")
	if !ok || mime == "" {
		return "", fmt.Errorf("%w: missing media type", apperr.ErrInvalidDataURL)
	}
	return mime, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if pad := (4 - len(payload)%4) % 4; pad > 0 {
		payload += strings.Repeat("=", pad)
	}
	payload = strings.NewReplacer("-", "+", "_", "/").Replace(payload)
	return base64.StdEncoding.DecodeString(payload)
}

// Extension returns a file extension (without the dot) for mime. When the
// declared type is unknown the bytes are sniffed instead.
func Extension(mime string, data []byte) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return "bin"
}
