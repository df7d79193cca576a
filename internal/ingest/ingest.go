// Package ingest forwards launcher payloads (text, clipboard images, files)
// into today's journal page of the open graph.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/bridge"
	"github.com/starford/quickseq/internal/dataurl"
	"github.com/starford/quickseq/internal/dateformat"
	"github.com/starford/quickseq/internal/fileclass"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/parser"
	"github.com/starford/quickseq/internal/storage"
)

// NoteStore is the subset of the RPC client used for ingest.
type NoteStore interface {
	CurrentGraph(ctx context.Context) (*models.Graph, error)
	UserConfigs(ctx context.Context) (*models.UserConfigs, error)
	AppendBlockInPage(ctx context.Context, page, text string) error
	ExitEditingMode(ctx context.Context) error
}

const (
	assetsDir = "assets"
	pagesDir  = "pages"

	maxNameAttempts = 100
)

// Service appends entries to the journal page.
type Service struct {
	store  NoteStore
	host   bridge.Host
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates an ingest service.
func NewService(store NoteStore, host bridge.Host, opts ...Option) *Service {
	s := &Service{store: store, host: host, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JournalPage returns the name of the journal page for t, rendered with the
// user's preferred date format.
func (s *Service) JournalPage(ctx context.Context, t time.Time) (string, error) {
	cfg, err := s.store.UserConfigs(ctx)
	if err != nil {
		return "", fmt.Errorf("ingest: user configs: %w", err)
	}
	format := cfg.PreferredDateFormat
	if format == "" {
		format = dateformat.DefaultFormat
	}
	return dateformat.Format(t, format), nil
}

// Text appends text as one block and returns the journal page it went to.
func (s *Service) Text(ctx context.Context, text string) (string, error) {
	page, err := s.JournalPage(ctx, s.now())
	if err != nil {
		return "", err
	}
	if err := s.append(ctx, page, text); err != nil {
		return page, err
	}
	s.logger.Info("ingest: text appended", slog.String("page", page))
	return page, nil
}

// DataURL decodes a data URL, stores it under assets/ and embeds it in the
// journal page.
func (s *Service) DataURL(ctx context.Context, raw string) (Item, error) {
	item := Item{Source: "clipboard"}
	data, mime, err := dataurl.Decode(raw)
	if err != nil {
		item.Err = err
		return item, err
	}

	now := s.now()
	page, err := s.JournalPage(ctx, now)
	if err != nil {
		item.Err = err
		return item, err
	}
	item.Page = page
	root, err := s.graphRoot(ctx)
	if err != nil {
		item.Err = err
		return item, err
	}

	rel, name, err := freeName(root, assetsDir, assetName(now, 0, ""), dataurl.Extension(mime, data))
	if err == nil {
		err = s.host.WriteFile(root, rel, data)
	}
	if err != nil {
		item.Err = err
		return item, err
	}

	item.Stored, _ = root.Resolve(rel)
	item.Category = fileclass.CategoryOf(name)
	item.Link = assetLink(item.Category, dataLabel(item.Category, name), name)
	if err := s.append(ctx, page, item.Link); err != nil {
		item.Err = err
		return item, err
	}
	s.logger.Info("ingest: data stored", slog.String("page", page), slog.String("file", name))
	return item, nil
}

// Files copies each path into the graph and links it from the journal page.
// A failing item is logged, notified and skipped; the rest continue.
func (s *Service) Files(ctx context.Context, paths []string) Report {
	now := s.now()
	report := Report{Items: make([]Item, 0, len(paths))}

	page, err := s.JournalPage(ctx, now)
	var root *storage.FS
	if err == nil {
		report.Page = page
		root, err = s.graphRoot(ctx)
	}
	if err != nil {
		for _, p := range paths {
			report.Items = append(report.Items, Item{Source: p, Page: page, Err: err})
		}
		s.fail("batch", err)
		return report
	}

	for i, p := range paths {
		item := s.file(ctx, root, page, now, i, p)
		if item.Err != nil {
			s.fail(p, item.Err)
		}
		report.Items = append(report.Items, item)
	}
	if report.Succeeded() > 0 {
		if err := s.store.ExitEditingMode(ctx); err != nil {
			s.logger.Warn("ingest: exit editing mode", slog.String("error", err.Error()))
		}
	}
	return report
}

func (s *Service) file(ctx context.Context, root *storage.FS, page string, now time.Time, seq int, src string) Item {
	item := Item{Source: src, Page: page}
	c := fileclass.Classify(filepath.Base(src))
	item.Category = c.Category

	var rel string
	var err error
	if c.Category == fileclass.Markdown {
		var data []byte
		if data, err = os.ReadFile(src); err != nil {
			item.Err = fmt.Errorf("ingest: read %s: %w", src, err)
			return item
		}
		var base string
		if rel, base, err = pageName(root, c.BaseName, now, seq); err == nil {
			item.Link = "[[" + parser.PageTitle(data, base) + "]]"
		}
	} else {
		var name string
		if rel, name, err = freeName(root, assetsDir, assetName(now, seq, ""), c.Extension); err == nil {
			item.Link = assetLink(c.Category, c.FileName(), name)
		}
	}
	if err == nil {
		err = s.host.CopyFile(root, src, rel)
	}
	if err != nil {
		item.Err = err
		item.Link = ""
		return item
	}
	item.Stored, _ = root.Resolve(rel)

	if err := s.store.AppendBlockInPage(ctx, page, item.Link); err != nil {
		item.Err = fmt.Errorf("ingest: append to %s: %w", page, err)
	}
	return item
}

func (s *Service) graphRoot(ctx context.Context) (*storage.FS, error) {
	g, err := s.store.CurrentGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: current graph: %w", err)
	}
	root, err := storage.NewFS(g.Path)
	if err != nil {
		return nil, fmt.Errorf("ingest: graph %s: %w", g.Name, err)
	}
	return root, nil
}

func (s *Service) append(ctx context.Context, page, text string) error {
	if err := s.store.AppendBlockInPage(ctx, page, text); err != nil {
		return fmt.Errorf("ingest: append to %s: %w", page, err)
	}
	if err := s.store.ExitEditingMode(ctx); err != nil {
		s.logger.Warn("ingest: exit editing mode", slog.String("error", err.Error()))
	}
	return nil
}

func (s *Service) fail(source string, err error) {
	s.logger.Error("ingest: item failed", slog.String("source", source), slog.String("error", err.Error()))
	if s.host != nil {
		s.host.Notify(fmt.Sprintf("Could not save %s: %v", filepath.Base(source), err))
	}
}

// assetName builds <unix ms>_<seq>[.<ext>].
func assetName(t time.Time, seq int, ext string) string {
	name := strconv.FormatInt(t.UnixMilli(), 10) + "_" + strconv.Itoa(seq)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// pageName places a Markdown file at pages/<name>.md. An existing page is
// never replaced: the copy goes to pages/<name>_<unix ms>_<seq>.md instead.
// It returns the relative path and the page's file name without extension.
func pageName(root storage.Provider, name string, now time.Time, seq int) (string, string, error) {
	rel := filepath.Join(pagesDir, name+".md")
	taken, err := root.Exists(rel)
	if err != nil || !taken {
		return rel, name, err
	}
	rel, file, err := freeName(root, pagesDir, name+"_"+assetName(now, seq, ""), "md")
	return rel, strings.TrimSuffix(file, ".md"), err
}

// freeName returns dir/<stem>[.<ext>], or dir/<stem>_<n>[.<ext>] for the
// smallest n that is not taken yet, along with the chosen file name.
func freeName(root storage.Provider, dir, stem, ext string) (string, string, error) {
	for n := 0; n < maxNameAttempts; n++ {
		file := stem
		if n > 0 {
			file += "_" + strconv.Itoa(n)
		}
		if ext != "" {
			file += "." + ext
		}
		rel := filepath.Join(dir, file)
		taken, err := root.Exists(rel)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return rel, file, nil
		}
	}
	path, _ := root.Resolve(filepath.Join(dir, stem))
	return "", "", &apperr.FileSystemError{Op: "name", Path: path, Err: os.ErrExist}
}

// dataLabel is "image" for pictures and the stored file name otherwise.
func dataLabel(cat fileclass.Category, name string) string {
	if cat == fileclass.Image {
		return "image"
	}
	return name
}

// assetLink embeds media and links everything else.
func assetLink(cat fileclass.Category, label, file string) string {
	target := "../" + assetsDir + "/" + file
	if cat.Embeddable() {
		return "![" + label + "](" + target + ")"
	}
	return "[" + label + "](" + target + ")"
}
