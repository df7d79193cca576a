package apperr

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestTransportErrorAs(t *testing.T) {
	var err error = &TransportError{Status: 502, URL: "http://127.0.0.1:12315/api"}
	wrapped := errors.Join(errors.New("search pages"), err)

	var te *TransportError
	if !errors.As(wrapped, &te) {
		t.Fatal("expected TransportError")
	}
	if te.Status != 502 {
		t.Errorf("status = %d, want 502", te.Status)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("message %q lacks status", err.Error())
	}
}

func TestFileSystemErrorUnwrap(t *testing.T) {
	err := &FileSystemError{Op: "write", Path: "/x/a.png", Err: os.ErrPermission}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("FileSystemError should unwrap to the cause")
	}
}
