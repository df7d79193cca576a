package search

import (
	"context"
	"sync"

	"github.com/starford/quickseq/internal/models"
)

// SetList renders a result list in the host's search pane.
type SetList func(items []models.SearchResult)

// Session serialises overlapping searches from one plugin session. Every
// call takes a new generation; only a response whose generation is still the
// latest is rendered, whatever order responses arrive in.
type Session struct {
	ID string

	svc Searcher

	mu         sync.Mutex
	term       string
	generation uint64
	cancel     context.CancelFunc
}

// NewSession creates a session identified by id.
func NewSession(id string, svc Searcher) *Session {
	return &Session{ID: id, svc: svc}
}

// Search runs term and renders the results unless a newer call superseded
// it. The previous in-flight query is cancelled on a best-effort basis.
// render is invoked with the session lock held and must not call back into
// the session.
func (s *Session) Search(ctx context.Context, term string, render SetList) (generation uint64, applied bool) {
	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.term = term
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	res := s.svc.SearchPagesAndBlocks(qctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return gen, false
	}
	s.cancel = nil
	if render != nil {
		render(res.List())
	}
	return gen, true
}

// Reset invalidates any in-flight search and clears the term.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.term = ""
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Term returns the most recently issued search term.
func (s *Session) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Generation returns the latest issued generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
