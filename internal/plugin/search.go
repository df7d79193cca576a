package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/bridge"
	"github.com/starford/quickseq/internal/deeplink"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/search"
)

// GraphSource resolves the open graph for deep links.
type GraphSource interface {
	CurrentGraph(ctx context.Context) (*models.Graph, error)
}

// SearchFeature searches pages and blocks as the user types and opens the
// selected result in the note application.
type SearchFeature struct {
	searcher search.Searcher
	graphs   GraphSource
	host     bridge.Host
	links    deeplink.Builder
	logger   *slog.Logger

	mu      sync.Mutex
	session *search.Session
}

// NewSearchFeature wires the search feature.
func NewSearchFeature(s search.Searcher, graphs GraphSource, host bridge.Host, links deeplink.Builder, logger *slog.Logger) *SearchFeature {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchFeature{searcher: s, graphs: graphs, host: host, links: links, logger: logger}
}

// Enter starts a fresh session and clears the list.
func (f *SearchFeature) Enter(_ context.Context, _ Action, setList SetList) error {
	f.mu.Lock()
	if f.session != nil {
		f.session.Reset()
	}
	f.session = search.NewSession(uuid.NewString(), f.searcher)
	f.mu.Unlock()

	if setList != nil {
		setList([]models.SearchResult{})
	}
	return nil
}

func (f *SearchFeature) currentSession() *search.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		f.session = search.NewSession(uuid.NewString(), f.searcher)
	}
	return f.session
}

// Session returns the active session, starting one if needed.
func (f *SearchFeature) Session() *search.Session {
	return f.currentSession()
}

// Search runs term in the active session. Only the newest term's results
// reach setList.
func (f *SearchFeature) Search(ctx context.Context, _ Action, term string, setList SetList) (SearchOutcome, error) {
	var out SearchOutcome
	gen, applied := f.currentSession().Search(ctx, term, func(items []models.SearchResult) {
		out.Items = items
		if setList != nil {
			setList(items)
		}
	})
	out.Generation, out.Applied = gen, applied
	return out, nil
}

// Select opens the deep link for item, hides the window and leaves the
// plugin. Items lacking a title or identifier, or selected while no graph
// is open, are ignored.
func (f *SearchFeature) Select(ctx context.Context, _ Action, item models.SearchResult, _ SetList) error {
	if !selectable(item) {
		return nil
	}
	g, err := f.graphs.CurrentGraph(ctx)
	if errors.Is(err, apperr.ErrNoGraph) {
		f.logger.Debug("plugin: select ignored, no graph open")
		return nil
	}
	if err != nil {
		f.host.Notify(fmt.Sprintf("Cannot open %s: %v", item.Title, err))
		return fmt.Errorf("plugin: select: %w", err)
	}
	link, ok := f.links.ForResult(g.Name, item)
	if !ok {
		return nil
	}
	f.logger.Debug("plugin: opening", slog.String("url", link))
	f.host.OpenURL(link)
	f.host.HideWindow()
	f.host.ExitPlugin()
	return nil
}

func selectable(item models.SearchResult) bool {
	switch item.Kind {
	case models.KindPage:
		return item.Title != ""
	case models.KindBlock:
		return item.Identifier != ""
	}
	return false
}
