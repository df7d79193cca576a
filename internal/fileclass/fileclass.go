// Package fileclass maps file names to coarse categories by extension.
package fileclass

import "strings"

// Category is a coarse file kind.
type Category string

const (
	Image    Category = "image"
	Video    Category = "video"
	Audio    Category = "audio"
	Markdown Category = "markdown"
	PDF      Category = "pdf"
	Document Category = "document"
	Archive  Category = "archive"
	Code     Category = "code"
	Unknown  Category = "unknown"
)

// Embeddable reports whether files of this category render inline (![...]).
func (c Category) Embeddable() bool {
	switch c {
	case Image, Video, Audio, PDF:
		return true
	}
	return false
}

// table is ordered; extension sets are disjoint so order only matters for
// readability.
var table = []struct {
	category   Category
	extensions []string
}{
	{Image, []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "svg", "webp"}},
	{Video, []string{"mp4", "avi", "mov", "mkv", "flv", "wmv", "webm"}},
	{Audio, []string{"mp3", "wav", "flac", "aac", "ogg", "wma"}},
	{Markdown, []string{"md"}},
	{PDF, []string{"pdf"}},
	{Document, []string{"txt", "doc", "docx", "xls", "xlsx", "ppt", "pptx"}},
	{Archive, []string{"zip", "rar", "7z", "tar", "gz"}},
	{Code, []string{"html", "css", "js", "jsx", "ts", "tsx", "java", "py", "cpp", "c", "cs", "php"}},
}

var byExtension = func() map[string]Category {
	m := make(map[string]Category)
	for _, row := range table {
		for _, ext := range row.extensions {
			if _, dup := m[ext]; !dup {
				m[ext] = row.category
			}
		}
	}
	return m
}()

// Classification is the result of Classify.
type Classification struct {
	Category  Category `json:"category"`
	Extension string   `json:"extension"` // lower-cased, without the dot
	BaseName  string   `json:"baseName"`
	// RawExtension keeps the original case so FileName can rebuild the input.
	RawExtension string `json:"-"`
}

// FileName rebuilds the classified file name.
func (c Classification) FileName() string {
	if c.RawExtension == "" {
		return c.BaseName
	}
	return c.BaseName + "." + c.RawExtension
}

// Classify derives the category, extension and base name of name. The
// extension is everything after the final dot; a name without a dot has no
// extension and is unknown.
func Classify(name string) Classification {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return Classification{Category: Unknown, BaseName: name}
	}
	raw := name[i+1:]
	ext := strings.ToLower(raw)
	cat, ok := byExtension[ext]
	if !ok {
		cat = Unknown
	}
	return Classification{
		Category:     cat,
		Extension:    ext,
		BaseName:     name[:i],
		RawExtension: raw,
	}
}

// CategoryOf is a shorthand for Classify(name).Category.
func CategoryOf(name string) Category {
	return Classify(name).Category
}
