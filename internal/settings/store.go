package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quickseq/internal/apperr"
)

// Persisted keys.
const (
	KeyHost  = "host"
	KeyPort  = "port"
	KeyToken = "token"
)

// Keys lists every accepted key in display order.
var Keys = []string{KeyHost, KeyPort, KeyToken}

// Defaults used when nothing is stored.
const (
	DefaultHost  = "127.0.0.1"
	DefaultPort  = 12315
	DefaultToken = "utools"
)

// Connection is the resolved note-store endpoint.
type Connection struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Token string `json:"token"`
}

// DefaultConnection returns the built-in endpoint.
func DefaultConnection() Connection {
	return Connection{Host: DefaultHost, Port: DefaultPort, Token: DefaultToken}
}

// Validate checks the connection fields.
func (c Connection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Token, validation.Required),
	)
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func validateValue(key, value string) error {
	switch key {
	case KeyPort:
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: port must be a number", apperr.ErrInvalidArgument)
		}
		if err := validation.Validate(port, validation.Min(1), validation.Max(65535)); err != nil {
			return fmt.Errorf("%w: port %v", apperr.ErrInvalidArgument, err)
		}
	default:
		if err := validation.Validate(strings.TrimSpace(value), validation.Required); err != nil {
			return fmt.Errorf("%w: %s %v", apperr.ErrInvalidArgument, key, err)
		}
	}
	return nil
}

// Get returns the stored value for key. The second result is false when
// nothing is stored.
func (s *Store) Get(key string) (string, bool, error) {
	if !knownKey(key) {
		return "", false, fmt.Errorf("%w: %q", apperr.ErrUnknownSetting, key)
	}
	var v string
	err := s.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	return v, true, nil
}

// Set validates and stores value under key.
func (s *Store) Set(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownSetting, key)
	}
	value = strings.TrimSpace(value)
	if err := validateValue(key, value); err != nil {
		return err
	}
	_, err := s.conn.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("settings: set %s: %w", key, err)
	}
	return nil
}

// All returns every stored key/value pair.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.conn.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("settings: all: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Resolve overlays stored values on defaults.
func (s *Store) Resolve(defaults Connection) (Connection, error) {
	stored, err := s.All()
	if err != nil {
		return defaults, err
	}
	c := defaults
	if v, ok := stored[KeyHost]; ok {
		c.Host = v
	}
	if v, ok := stored[KeyPort]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return defaults, fmt.Errorf("settings: stored port %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := stored[KeyToken]; ok {
		c.Token = v
	}
	return c, nil
}

// Ingested reports whether a file with checksum was already ingested.
func (s *Store) Ingested(checksum string) (bool, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM ingested WHERE checksum = ?`, checksum).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("settings: ingested lookup: %w", err)
	}
	return n > 0, nil
}

// MarkIngested records checksum as ingested from path.
func (s *Store) MarkIngested(checksum, path string) error {
	_, err := s.conn.Exec(`
		INSERT INTO ingested (checksum, path, ingested_at) VALUES (?, ?, ?)
		ON CONFLICT(checksum) DO NOTHING
	`, checksum, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("settings: mark ingested: %w", err)
	}
	return nil
}
