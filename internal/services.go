package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/quickseq/internal/bridge"
	"github.com/starford/quickseq/internal/deeplink"
	"github.com/starford/quickseq/internal/ingest"
	"github.com/starford/quickseq/internal/plugin"
	"github.com/starford/quickseq/internal/rpc"
	"github.com/starford/quickseq/internal/search"
	"github.com/starford/quickseq/internal/settings"
)

// Services holds the components shared by the HTTP server, the MCP server
// and the one-shot CLI commands.
type Services struct {
	Settings *settings.Store
	Client   *rpc.Client
	Host     *bridge.Local
	Search   *search.Service
	Ingest   *ingest.Service
	Links    deeplink.Builder
	Logger   *slog.Logger
}

// NewServices opens the settings store, resolves the note-store endpoint and
// builds the search and ingest services. Host notifications go to emitter.
func NewServices(cfg *Config, emitter bridge.Emitter, logger *slog.Logger) (*Services, error) {
	store, err := settings.Open(cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	conn, err := store.Resolve(cfg.NoteStore.Connection())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("resolve settings: %w", err)
	}
	logger.Debug("note-store endpoint resolved",
		slog.String("host", conn.Host),
		slog.Int("port", conn.Port))

	// No client timeout; callers bound each call with their context.
	client := rpc.New(conn.Host, conn.Port, conn.Token)
	host := bridge.NewLocal(emitter)

	return &Services{
		Settings: store,
		Client:   client,
		Host:     host,
		Search: search.NewService(client, host,
			search.WithLimit(cfg.Search.Limit),
			search.WithLogger(logger)),
		Ingest: ingest.NewService(client, host, ingest.WithLogger(logger)),
		Links:  deeplink.New(cfg.NoteStore.Scheme),
		Logger: logger,
	}, nil
}

// Features registers the search and save launcher features.
func (s *Services) Features() *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.Register(plugin.CodeSearch, plugin.NewSearchFeature(s.Search, s.Client, s.Host, s.Links, s.Logger))
	reg.Register(plugin.CodeSave, plugin.NewIngestFeature(s.Ingest, s.Host, s.Logger))
	return reg
}

// ApplyConnection points the RPC client at a new endpoint.
func (s *Services) ApplyConnection(c settings.Connection) {
	s.Client.SetEndpoint(c.Host, c.Port, c.Token)
	s.Logger.Info("note-store endpoint updated",
		slog.String("host", c.Host),
		slog.Int("port", c.Port))
}

// Close releases the settings database.
func (s *Services) Close() error {
	return s.Settings.Close()
}
