package ingest

import (
	"fmt"

	"github.com/starford/quickseq/internal/fileclass"
)

// Item is the outcome of ingesting one payload.
type Item struct {
	Source   string             `json:"source"`
	Category fileclass.Category `json:"category,omitempty"`
	Page     string             `json:"page,omitempty"`
	Stored   string             `json:"stored,omitempty"`
	Link     string             `json:"link,omitempty"`
	Err      error              `json:"-"`
}

// Report lists per-item outcomes of a Files call.
type Report struct {
	Page  string `json:"page"`
	Items []Item `json:"items"`
}

// Succeeded counts items without an error.
func (r Report) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the items that did not make it.
func (r Report) Failed() []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Summary is a one-line, user-facing description of the outcome.
func (r Report) Summary() string {
	ok, total := r.Succeeded(), len(r.Items)
	switch {
	case total == 0:
		return "Nothing to save"
	case ok == total:
		return fmt.Sprintf("Saved %d item(s) to %s", ok, r.Page)
	case ok == 0:
		return fmt.Sprintf("Saving failed for all %d item(s)", total)
	}
	return fmt.Sprintf("Saved %d of %d item(s) to %s", ok, total, r.Page)
}
