package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/quickseq/internal/models"
)

// The note-store strips keyword namespaces and camel-cases keys, but older
// builds keep the kebab-case form, so both spellings are accepted.
type pageRef struct {
	Name              string `json:"name"`
	OriginalName      string `json:"originalName"`
	OriginalNameKebab string `json:"original-name"`
}

func (p *pageRef) title() string {
	if p == nil {
		return ""
	}
	switch {
	case p.OriginalName != "":
		return p.OriginalName
	case p.OriginalNameKebab != "":
		return p.OriginalNameKebab
	}
	return p.Name
}

type pageRow struct {
	pageRef
	ID         json.RawMessage            `json:"id"`
	UUID       string                     `json:"uuid"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type blockRow struct {
	ID      json.RawMessage `json:"id"`
	UUID    string          `json:"uuid"`
	Content string          `json:"content"`
	Page    *pageRef        `json:"page"`
}

// pulledEntities unwraps [[{...}], [{...}]] query output into one raw entity per row.
func pulledEntities(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("search: decode rows: %w", err)
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		trimmed := bytes.TrimSpace(row)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var tuple []json.RawMessage
			if err := json.Unmarshal(trimmed, &tuple); err != nil {
				return nil, fmt.Errorf("search: decode row: %w", err)
			}
			if len(tuple) == 0 {
				continue
			}
			trimmed = tuple[0]
		}
		out = append(out, trimmed)
	}
	return out, nil
}

// shapePages maps raw page rows into results, dropping duplicate identifiers.
func shapePages(raw json.RawMessage) ([]models.SearchResult, error) {
	entities, err := pulledEntities(raw)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]models.SearchResult, 0, len(entities))
	for _, e := range entities {
		var row pageRow
		if err := json.Unmarshal(e, &row); err != nil {
			return nil, fmt.Errorf("search: decode page: %w", err)
		}
		id := identifier(row.ID, row.UUID)
		if _, dup := seen[id]; dup && id != "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.SearchResult{
			Kind:       models.KindPage,
			Title:      row.title(),
			Tags:       tagDescriptions(row.Properties["tags"]),
			Identifier: id,
		})
	}
	return out, nil
}

// shapeBlocks maps raw block rows into results. Blocks link by uuid.
func shapeBlocks(raw json.RawMessage) ([]models.SearchResult, error) {
	entities, err := pulledEntities(raw)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]models.SearchResult, 0, len(entities))
	for _, e := range entities {
		var row blockRow
		if err := json.Unmarshal(e, &row); err != nil {
			return nil, fmt.Errorf("search: decode block: %w", err)
		}
		if row.UUID != "" {
			if _, dup := seen[row.UUID]; dup {
				continue
			}
			seen[row.UUID] = struct{}{}
		}
		title := row.Page.title()
		if title == "" {
			title = models.UnknownPage
		}
		out = append(out, models.SearchResult{
			Kind:       models.KindBlock,
			Title:      title,
			Content:    cleanContent(row.Content),
			Identifier: row.UUID,
		})
	}
	return out, nil
}

func identifier(id json.RawMessage, uuid string) string {
	s := strings.Trim(string(bytes.TrimSpace(id)), `"`)
	if s != "" && s != "null" {
		return s
	}
	return uuid
}

// tagDescriptions accepts ["a","b"] or "a, b" and returns ["#a", "#b"].
func tagDescriptions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		for _, part := range strings.Split(single, ",") {
			names = append(names, part)
		}
	}
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(strings.TrimPrefix(strings.Trim(strings.TrimSpace(n), "[]"), "#"))
		if n != "" {
			out = append(out, "#"+n)
		}
	}
	return out
}

var propertyLineRe = regexp.MustCompile(`(?m)^\s*[A-Za-z0-9_-]+:: .*$\n?`)

// cleanContent drops property lines such as "id:: ..." from block text.
func cleanContent(s string) string {
	return strings.TrimSpace(propertyLineRe.ReplaceAllString(s, ""))
}
