package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/bridge"
	"github.com/starford/quickseq/internal/ingest"
	"github.com/starford/quickseq/internal/models"
)

// Payload types the launcher sends to the save feature.
const (
	TypeText  = "text"
	TypeOver  = "over"
	TypeImage = "img"
	TypeFiles = "files"
)

// Ingester is implemented by *ingest.Service.
type Ingester interface {
	Text(ctx context.Context, text string) (string, error)
	DataURL(ctx context.Context, raw string) (ingest.Item, error)
	Files(ctx context.Context, paths []string) ingest.Report
}

// fileEntry is one element of a "files" payload.
type fileEntry struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	IsFile      *bool  `json:"isFile"`
	IsDirectory bool   `json:"isDirectory"`
}

// IngestFeature saves the entered payload to today's journal and closes.
type IngestFeature struct {
	ingest Ingester
	host   bridge.Host
	logger *slog.Logger
}

// NewIngestFeature wires the save feature.
func NewIngestFeature(in Ingester, host bridge.Host, logger *slog.Logger) *IngestFeature {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestFeature{ingest: in, host: host, logger: logger}
}

// Enter ingests the payload by type, reports the outcome, then hides the
// window and exits. Unknown types are rejected without side effects.
func (f *IngestFeature) Enter(ctx context.Context, action Action, _ SetList) error {
	msg, err := f.dispatch(ctx, action)
	if errors.Is(err, apperr.ErrInvalidArgument) {
		return err
	}
	if err != nil {
		msg = err.Error()
	}
	f.host.Notify(msg)
	f.host.HideWindow()
	f.host.ExitPlugin()
	return err
}

func (f *IngestFeature) dispatch(ctx context.Context, action Action) (string, error) {
	switch action.Type {
	case TypeText, TypeOver:
		var text string
		if err := json.Unmarshal(action.Payload, &text); err != nil {
			return "", fmt.Errorf("%w: text payload: %v", apperr.ErrInvalidArgument, err)
		}
		page, err := f.ingest.Text(ctx, text)
		if err != nil {
			return "", err
		}
		return "Saved to " + page, nil

	case TypeImage:
		var raw string
		if err := json.Unmarshal(action.Payload, &raw); err != nil {
			return "", fmt.Errorf("%w: image payload: %v", apperr.ErrInvalidArgument, err)
		}
		item, err := f.ingest.DataURL(ctx, raw)
		if err != nil {
			return "", err
		}
		return "Image saved to " + item.Page, nil

	case TypeFiles:
		var entries []fileEntry
		if err := json.Unmarshal(action.Payload, &entries); err != nil {
			return "", fmt.Errorf("%w: files payload: %v", apperr.ErrInvalidArgument, err)
		}
		paths := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDirectory || (e.IsFile != nil && !*e.IsFile) || e.Path == "" {
				f.logger.Info("plugin: skipping non-file entry", slog.String("path", e.Path))
				continue
			}
			paths = append(paths, e.Path)
		}
		return f.ingest.Files(ctx, paths).Summary(), nil
	}
	return "", fmt.Errorf("%w: payload type %q", apperr.ErrInvalidArgument, action.Type)
}

// Search does nothing for the save feature.
func (f *IngestFeature) Search(context.Context, Action, string, SetList) (SearchOutcome, error) {
	return SearchOutcome{}, nil
}

// Select does nothing for the save feature.
func (f *IngestFeature) Select(context.Context, Action, models.SearchResult, SetList) error {
	return nil
}
