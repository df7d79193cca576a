// Package plugin implements the launcher lifecycle callbacks (enter, search,
// select) for each feature the plugin registers.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/search"
)

// Feature codes registered with the launcher.
const (
	CodeSearch = "search"
	CodeSave   = "save"
)

// Action is what the launcher passes to a callback: the feature code, the
// payload type and the payload itself.
type Action struct {
	Code    string          `json:"code"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetList renders items in the launcher's result list.
type SetList = search.SetList

// SearchOutcome reports what a Search callback did with the list.
type SearchOutcome struct {
	Generation uint64                `json:"generation"`
	Applied    bool                  `json:"applied"`
	Items      []models.SearchResult `json:"items"`
}

// Feature is one launcher entry point.
type Feature interface {
	Enter(ctx context.Context, action Action, setList SetList) error
	Search(ctx context.Context, action Action, term string, setList SetList) (SearchOutcome, error)
	Select(ctx context.Context, action Action, item models.SearchResult, setList SetList) error
}

// Registry maps feature codes to features.
type Registry struct {
	mu       sync.RWMutex
	features map[string]Feature
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{features: make(map[string]Feature)}
}

// Register binds f to code, replacing any previous binding.
func (r *Registry) Register(code string, f Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[code] = f
}

// Get returns the feature for code or apperr.ErrUnknownFeature.
func (r *Registry) Get(code string) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.features[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownFeature, code)
	}
	return f, nil
}

// Codes lists registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.features))
	for code := range r.features {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
