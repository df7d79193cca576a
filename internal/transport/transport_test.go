package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/quickseq/internal/apperr"
)

func TestDo_JSONBody(t *testing.T) {
	var gotCT, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := Do(context.Background(), srv.Client(), Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   map[string]string{"a": "b"},
	}, &out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s", gotMethod)
	}
	if gotCT != "application/json" {
		t.Errorf("content-type = %q", gotCT)
	}
	if gotBody["a"] != "b" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestDo_DefaultsToGET(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer srv.Close()

	if err := Do(context.Background(), nil, Request{URL: srv.URL}, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %s, want GET", gotMethod)
	}
}

func TestDo_RawBodyPassesThrough(t *testing.T) {
	var got string
	var gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		gotCT = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	if err := Do(context.Background(), srv.Client(), Request{Method: http.MethodPut, URL: srv.URL, Body: "plain"}, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "plain" {
		t.Errorf("body = %q", got)
	}
	if gotCT != "" {
		t.Errorf("raw body should not set content-type, got %q", gotCT)
	}
}

func TestDo_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := Do(context.Background(), srv.Client(), Request{URL: srv.URL}, nil)
	var te *apperr.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", te.Status)
	}
}

func TestDo_EmptyBodyIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	var raw json.RawMessage
	if err := Do(context.Background(), srv.Client(), Request{URL: srv.URL}, &raw); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("raw = %q, want null", raw)
	}
}
