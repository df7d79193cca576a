// Package deeplink builds URLs that focus the note application on a page or block.
package deeplink

import (
	"net/url"
	"strings"

	"github.com/starford/quickseq/internal/models"
)

// DefaultScheme is the URL scheme registered by the note application.
const DefaultScheme = "logseq"

// Builder creates deep links for one URL scheme.
type Builder struct {
	Scheme string
}

// New returns a Builder for scheme, falling back to DefaultScheme.
func New(scheme string) Builder {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return Builder{Scheme: scheme}
}

// Page returns <scheme>://graph/<graph>?page=<title>.
func (b Builder) Page(graph, title string) (string, bool) {
	if graph == "" || title == "" {
		return "", false
	}
	return b.base(graph) + "?page=" + encodeComponent(title), true
}

// Block returns <scheme>://graph/<graph>?block-id=<id>.
func (b Builder) Block(graph, id string) (string, bool) {
	if graph == "" || id == "" {
		return "", false
	}
	return b.base(graph) + "?block-id=" + encodeComponent(id), true
}

// ForResult picks the link form for r. The second result is false when a
// required field is missing, in which case selection should do nothing.
func (b Builder) ForResult(graph string, r models.SearchResult) (string, bool) {
	switch r.Kind {
	case models.KindPage:
		return b.Page(graph, r.Title)
	case models.KindBlock:
		return b.Block(graph, r.Identifier)
	}
	return "", false
}

func (b Builder) base(graph string) string {
	scheme := b.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + "://graph/" + url.PathEscape(graph)
}

// encodeComponent escapes like encodeURIComponent: spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
