// Package rpc calls the note-store's single JSON RPC endpoint.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/transport"
)

// Remote method names.
const (
	MethodCurrentGraph      = "logseq.App.getCurrentGraph"
	MethodUserConfigs       = "logseq.App.getUserConfigs"
	MethodAppendBlockInPage = "logseq.Editor.appendBlockInPage"
	MethodExitEditingMode   = "logseq.Editor.exitEditingMode"
	MethodDatascriptQuery   = "logseq.DB.datascriptQuery"
)

// Caller is the part of Client used by higher layers.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (json.RawMessage, error)
}

// Client sends {method, args} envelopes to http://host:port/api.
type Client struct {
	mu    sync.RWMutex
	url   string
	token string
	http  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithURL overrides the endpoint URL built from host and port.
func WithURL(u string) Option {
	return func(c *Client) { c.url = u }
}

// New creates a client for the note-store listening on host:port.
func New(host string, port int, token string, opts ...Option) *Client {
	c := &Client{
		url:   endpoint(host, port),
		token: token,
		http:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func endpoint(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/api"
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// SetEndpoint points subsequent calls at a new host, port and token.
// Calls already in flight keep the old values.
func (c *Client) SetEndpoint(host string, port int, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = endpoint(host, port)
	c.token = token
}

type envelope struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Call invokes method with positional args and returns the raw JSON result.
// There is exactly one attempt; ctx bounds its duration.
func (c *Client) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	c.mu.RLock()
	url, token := c.url, c.token
	c.mu.RUnlock()

	var raw json.RawMessage
	err := transport.Do(ctx, c.http, transport.Request{
		Method: http.MethodPost,
		URL:    url,
		Header: http.Header{"Authorization": {"Bearer " + token}},
		Body:   envelope{Method: method, Args: args},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("rpc: %s: %w", method, err)
	}
	if isErrorBody(raw) {
		return nil, &apperr.RemoteMethodError{Method: method, Body: raw}
	}
	return raw, nil
}

// isErrorBody reports whether raw is an object carrying a non-null "error" member.
func isErrorBody(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return false
	}
	v, ok := obj["error"]
	return ok && string(bytes.TrimSpace(v)) != "null"
}

// CurrentGraph returns the open graph. A null result maps to apperr.ErrNoGraph.
func (c *Client) CurrentGraph(ctx context.Context) (*models.Graph, error) {
	raw, err := c.Call(ctx, MethodCurrentGraph)
	if err != nil {
		return nil, err
	}
	var g *models.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("rpc: decode graph: %w", err)
	}
	if g == nil || g.Name == "" {
		return nil, apperr.ErrNoGraph
	}
	return g, nil
}

// UserConfigs returns the note-store's user configuration.
func (c *Client) UserConfigs(ctx context.Context) (*models.UserConfigs, error) {
	raw, err := c.Call(ctx, MethodUserConfigs)
	if err != nil {
		return nil, err
	}
	cfg := &models.UserConfigs{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("rpc: decode user configs: %w", err)
	}
	return cfg, nil
}

// AppendBlockInPage appends text as a new block at the end of page.
func (c *Client) AppendBlockInPage(ctx context.Context, page, text string) error {
	_, err := c.Call(ctx, MethodAppendBlockInPage, page, text)
	return err
}

// ExitEditingMode leaves block editing in the note-store UI.
func (c *Client) ExitEditingMode(ctx context.Context) error {
	_, err := c.Call(ctx, MethodExitEditingMode)
	return err
}

// DatascriptQuery runs q with its inputs bound as separate arguments.
func (c *Client) DatascriptQuery(ctx context.Context, q Query) (json.RawMessage, error) {
	return c.Call(ctx, MethodDatascriptQuery, q.Args()...)
}
