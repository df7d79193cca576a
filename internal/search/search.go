// Package search turns a free-text term into page and block queries against
// the note-store and shapes the rows into one display list.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/rpc"
)

// Querier runs datascript queries. *rpc.Client satisfies it.
type Querier interface {
	DatascriptQuery(ctx context.Context, q rpc.Query) (json.RawMessage, error)
}

// Notifier receives user-visible messages.
type Notifier interface {
	Notify(msg string)
}

// Searcher is the operation a Session drives.
type Searcher interface {
	SearchPagesAndBlocks(ctx context.Context, term string) Results
}

// Results holds the two halves of a search. Either may be empty.
type Results struct {
	Pages  []models.SearchResult `json:"pages"`
	Blocks []models.SearchResult `json:"blocks"`
}

// List concatenates pages before blocks for rendering.
func (r Results) List() []models.SearchResult {
	out := make([]models.SearchResult, 0, len(r.Pages)+len(r.Blocks))
	out = append(out, r.Pages...)
	return append(out, r.Blocks...)
}

// Service implements Searcher on top of the note-store RPC client.
type Service struct {
	q      Querier
	notify Notifier
	logger *slog.Logger
	limit  int
}

// Option configures a Service.
type Option func(*Service)

// WithLimit caps each half of the results. Zero means no cap.
func WithLimit(n int) Option {
	return func(s *Service) { s.limit = n }
}

// WithLogger sets the logger used for failed queries.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a search service. notify may be nil.
func NewService(q Querier, notify Notifier, opts ...Option) *Service {
	s := &Service{q: q, notify: notify, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchPagesAndBlocks issues the page-name and block-content queries in
// parallel. A failed half comes back empty and is reported through the
// notifier; the call itself never fails. An empty term matches nothing.
func (s *Service) SearchPagesAndBlocks(ctx context.Context, term string) Results {
	res := Results{Pages: []models.SearchResult{}, Blocks: []models.SearchResult{}}
	if term == "" {
		return res
	}

	var g errgroup.Group
	g.Go(func() error {
		res.Pages = s.half(ctx, "pages", pagesQuery(term), shapePages)
		return nil
	})
	g.Go(func() error {
		res.Blocks = s.half(ctx, "blocks", blocksQuery(term), shapeBlocks)
		return nil
	})
	_ = g.Wait()
	return res
}

func (s *Service) half(ctx context.Context, name string, q rpc.Query, shape func(json.RawMessage) ([]models.SearchResult, error)) []models.SearchResult {
	raw, err := s.q.DatascriptQuery(ctx, q)
	if err == nil {
		var items []models.SearchResult
		if items, err = shape(raw); err == nil {
			if s.limit > 0 && len(items) > s.limit {
				items = items[:s.limit]
			}
			return items
		}
	}

	if errors.Is(err, context.Canceled) {
		s.logger.Debug("search: query cancelled", slog.String("half", name))
		return []models.SearchResult{}
	}
	s.logger.Warn("search: query failed", slog.String("half", name), slog.String("error", err.Error()))
	if s.notify != nil {
		s.notify.Notify(fmt.Sprintf("Searching %s failed: %v", name, err))
	}
	return []models.SearchResult{}
}
