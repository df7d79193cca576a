package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/quickseq/internal/apperr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetUnset(t *testing.T) {
	s := testStore(t)
	v, ok, err := s.Get(KeyHost)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get = %q, %v; want empty, false", v, ok)
	}
}

func TestSetGet(t *testing.T) {
	s := testStore(t)
	if err := s.Set(KeyPort, " 8080 "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(KeyPort)
	if err != nil || !ok || v != "8080" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := s.Set(KeyPort, "9090"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, _, _ = s.Get(KeyPort)
	if v != "9090" {
		t.Errorf("overwrite = %q", v)
	}
}

func TestUnknownKey(t *testing.T) {
	s := testStore(t)
	if err := s.Set("colour", "blue"); !errors.Is(err, apperr.ErrUnknownSetting) {
		t.Errorf("Set unknown: %v", err)
	}
	if _, _, err := s.Get("colour"); !errors.Is(err, apperr.ErrUnknownSetting) {
		t.Errorf("Get unknown: %v", err)
	}
}

func TestInvalidValues(t *testing.T) {
	s := testStore(t)
	cases := []struct{ key, value string }{
		{KeyPort, "abc"},
		{KeyPort, "0"},
		{KeyPort, "70000"},
		{KeyHost, "  "},
		{KeyToken, ""},
	}
	for _, tc := range cases {
		if err := s.Set(tc.key, tc.value); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Set(%s, %q) = %v, want ErrInvalidArgument", tc.key, tc.value, err)
		}
	}
}

func TestResolve(t *testing.T) {
	s := testStore(t)

	got, err := s.Resolve(DefaultConnection())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != (Connection{Host: "127.0.0.1", Port: 12315, Token: "utools"}) {
		t.Errorf("defaults = %+v", got)
	}

	_ = s.Set(KeyHost, "10.0.0.2")
	_ = s.Set(KeyToken, "secret")
	got, err = s.Resolve(DefaultConnection())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Host != "10.0.0.2" || got.Port != 12315 || got.Token != "secret" {
		t.Errorf("resolved = %+v", got)
	}

	all, _ := s.All()
	if len(all) != 2 {
		t.Errorf("All = %v", all)
	}
}

func TestConnectionValidate(t *testing.T) {
	if err := DefaultConnection().Validate(); err != nil {
		t.Errorf("default connection invalid: %v", err)
	}
	if err := (Connection{Host: "h", Port: 0, Token: "t"}).Validate(); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestIngested(t *testing.T) {
	s := testStore(t)
	seen, err := s.Ingested("abc")
	if err != nil || seen {
		t.Fatalf("Ingested = %v, %v", seen, err)
	}
	if err := s.MarkIngested("abc", "/inbox/a.png"); err != nil {
		t.Fatalf("MarkIngested: %v", err)
	}
	if err := s.MarkIngested("abc", "/inbox/copy.png"); err != nil {
		t.Fatalf("MarkIngested duplicate: %v", err)
	}
	seen, _ = s.Ingested("abc")
	if !seen {
		t.Error("expected checksum to be recorded")
	}
}
