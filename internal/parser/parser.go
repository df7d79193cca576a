// Package parser reads the page metadata of a Markdown file about to be
// copied into the graph: YAML frontmatter and leading "key:: value" properties.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var propertyRe = regexp.MustCompile(`^\s*(?:-\s+)?([A-Za-z0-9_-]+)::\s*(.*)$`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Properties  map[string]string
	Body        string
	Title       string
}

// Parse extracts frontmatter, page properties and the title from raw Markdown bytes.
func Parse(data []byte) *Result {
	fm, body := splitFrontmatter(data)
	props := leadingProperties(body)
	return &Result{
		Frontmatter: fm,
		Properties:  props,
		Body:        body,
		Title:       deriveTitle(fm, props),
	}
}

// PageTitle returns the title a page file declares, or fallback.
func PageTitle(data []byte, fallback string) string {
	if t := Parse(data).Title; t != "" {
		return t
	}
	return fallback
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: the whole file is body.
		return nil, string(data)
	}
	return fm, body
}

// leadingProperties collects the "key:: value" lines that open the page,
// stopping at the first line that is not a property.
func leadingProperties(body string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(props) == 0 {
				continue
			}
			break
		}
		m := propertyRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		props[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	return props
}

// deriveTitle prefers the frontmatter "title", then the title:: property.
func deriveTitle(fm map[string]any, props map[string]string) string {
	if fm != nil {
		if s, ok := fm["title"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return props["title"]
}
