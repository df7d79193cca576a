// Package models defines the domain types shared by quickseq packages.
package models

// Kind discriminates search results.
type Kind string

const (
	KindPage  Kind = "page"
	KindBlock Kind = "block"
)

// UnknownPage is the title given to a block whose page could not be resolved.
const UnknownPage = "(unknown page)"

// SearchResult is one row of the rendered search list.
//
// For pages Title is the page name and Tags holds "#tag" descriptions.
// For blocks Title is the enclosing page name and Content the block text.
// Identifier is assigned by the note-store and only used for deep links.
type SearchResult struct {
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	Content    string   `json:"content,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
}

// Graph is the note-store's currently open graph.
type Graph struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

// UserConfigs is the subset of the note-store's user configuration quickseq reads.
type UserConfigs struct {
	PreferredDateFormat string `json:"preferredDateFormat"`
	PreferredFormat     string `json:"preferredFormat,omitempty"`
	PreferredLanguage   string `json:"preferredLanguage,omitempty"`
}
