package dataurl

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/starford/quickseq/internal/apperr"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDecode(t *testing.T) {
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	data, mime, err := Decode(url)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q", mime)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Errorf("data mismatch")
	}
}

func TestDecode_URLSafeWithoutPadding(t *testing.T) {
	raw := []byte{0xfb, 0xff, 0xfe, 0x01}
	url := "data:application/octet-stream;base64," + base64.RawURLEncoding.EncodeToString(raw)
	data, _, err := Decode(url)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(data, raw) {
		t.Errorf("data = %v, want %v", data, raw)
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, in := range []string{
		"no comma here",
		"data:;base64,AAAA",
		"image/png;base64,AAAA",
		"data:image/png;base64,@@@@",
	} {
		if _, _, err := Decode(in); !errors.Is(err, apperr.ErrInvalidDataURL) {
			t.Errorf("Decode(%q) err = %v, want ErrInvalidDataURL", in, err)
		}
	}
}

func TestExtension(t *testing.T) {
	if got := Extension("image/png", nil); got != "png" {
		t.Errorf("png = %q", got)
	}
	if got := Extension("image/jpeg", nil); got != "jpg" {
		t.Errorf("jpeg = %q", got)
	}
	if got := Extension("application/x-made-up", pngHeader); got != "png" {
		t.Errorf("sniffed = %q, want png", got)
	}
}
