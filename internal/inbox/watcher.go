// Package inbox watches a drop folder and ingests files that land in it.
package inbox

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quickseq/internal/checksum"
	"github.com/starford/quickseq/internal/ingest"
	"github.com/starford/quickseq/internal/storage"
)

// DefaultSettle is how long a file must stay quiet before it is ingested.
const DefaultSettle = 500 * time.Millisecond

// Ingester is implemented by *ingest.Service.
type Ingester interface {
	Files(ctx context.Context, paths []string) ingest.Report
}

// Ledger remembers which contents were already ingested.
type Ledger interface {
	Ingested(checksum string) (bool, error)
	MarkIngested(checksum, path string) error
}

// ReportCallback is called after every ingested batch.
type ReportCallback func(ingest.Report)

// Watch starts an fsnotify watcher on dir and ingests new or rewritten
// regular files once they have been quiet for settle. Contents whose
// checksum is already in the ledger are skipped. It returns when ctx is
// cancelled.
func Watch(ctx context.Context, dir string, in Ingester, ledger Ledger, settle time.Duration, logger *slog.Logger, cb ReportCallback) error {
	if settle <= 0 {
		settle = DefaultSettle
	}
	root, err := storage.NewFS(dir)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root.Root()); err != nil {
		return err
	}
	logger.Info("inbox: started", slog.String("dir", root.Root()))

	pending := make(map[string]struct{})
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case <-settleCh:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			pending = make(map[string]struct{})
			flush(ctx, root, batch, in, ledger, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("inbox: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					queueDir(ev.Name, pending)
					schedule()
					continue
				}
				pending[ev.Name] = struct{}{}
				schedule()

			case ev.Op&fsnotify.Write != 0:
				pending[ev.Name] = struct{}{}
				schedule()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

// flush ingests the settled files that are regular and not yet seen.
func flush(ctx context.Context, root *storage.FS, batch []string, in Ingester, ledger Ledger, logger *slog.Logger, cb ReportCallback) {
	sort.Strings(batch)
	sums := make(map[string]string, len(batch))
	paths := make([]string, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))

	for _, abs := range batch {
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		rel, err := filepath.Rel(root.Root(), abs)
		if err != nil {
			continue
		}
		data, err := root.Read(rel)
		if err != nil {
			logger.Warn("inbox: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		sum := checksum.Sum(data)
		if _, dup := seen[sum]; dup {
			continue
		}
		seen[sum] = struct{}{}
		if done, err := ledger.Ingested(sum); err != nil {
			logger.Warn("inbox: ledger lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		} else if done {
			logger.Debug("inbox: already ingested", slog.String("path", rel))
			continue
		}
		sums[abs] = sum
		paths = append(paths, abs)
	}
	if len(paths) == 0 {
		return
	}

	report := in.Files(ctx, paths)
	for _, it := range report.Items {
		if it.Err != nil {
			continue
		}
		if err := ledger.MarkIngested(sums[it.Source], it.Source); err != nil {
			logger.Warn("inbox: ledger update failed", slog.String("path", it.Source), slog.String("error", err.Error()))
		}
	}
	logger.Info("inbox: batch ingested",
		slog.Int("files", len(paths)),
		slog.Int("succeeded", report.Succeeded()))
	if cb != nil {
		cb(report)
	}
}

// ignored filters hidden files, editor swap files and partial downloads.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	for _, suffix := range []string{".tmp", ".part", ".crdownload", ".swp", "~"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// queueDir adds the files already inside a directory that was moved in.
func queueDir(dir string, pending map[string]struct{}) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || ignored(path) {
			return nil
		}
		pending[path] = struct{}{}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ignored(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
