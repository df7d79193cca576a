package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/starford/quickseq/internal/apperr"
	"github.com/starford/quickseq/internal/deeplink"
	"github.com/starford/quickseq/internal/ingest"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/search"
	"github.com/starford/quickseq/internal/storage"
)

type fakeHost struct {
	notes  []string
	opened []string
	hidden int
	exited int
}

func (h *fakeHost) WriteFile(storage.Provider, string, []byte) error { return nil }
func (h *fakeHost) CopyFile(storage.Provider, string, string) error  { return nil }
func (h *fakeHost) Notify(msg string)                                { h.notes = append(h.notes, msg) }
func (h *fakeHost) OpenURL(url string)                               { h.opened = append(h.opened, url) }
func (h *fakeHost) HideWindow()                                      { h.hidden++ }
func (h *fakeHost) ExitPlugin()                                      { h.exited++ }

type fakeGraphs struct {
	graph *models.Graph
	err   error
	calls int
}

func (g *fakeGraphs) CurrentGraph(context.Context) (*models.Graph, error) {
	g.calls++
	return g.graph, g.err
}

type staticSearcher struct{ terms []string }

func (s *staticSearcher) SearchPagesAndBlocks(_ context.Context, term string) search.Results {
	s.terms = append(s.terms, term)
	return search.Results{
		Pages:  []models.SearchResult{{Kind: models.KindPage, Title: "Page " + term, Identifier: "1"}},
		Blocks: []models.SearchResult{{Kind: models.KindBlock, Title: "Page " + term, Content: term, Identifier: "u-1"}},
	}
}

func newSearchFeature(g *fakeGraphs, h *fakeHost) (*SearchFeature, *staticSearcher) {
	s := &staticSearcher{}
	return NewSearchFeature(s, g, h, deeplink.New(""), nil), s
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	f, _ := newSearchFeature(&fakeGraphs{}, &fakeHost{})
	r.Register(CodeSearch, f)
	r.Register(CodeSave, NewIngestFeature(&fakeIngester{}, &fakeHost{}, nil))

	if got, err := r.Get(CodeSearch); err != nil || got != Feature(f) {
		t.Errorf("Get(search) = %v, %v", got, err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, apperr.ErrUnknownFeature) {
		t.Errorf("Get(nope) err = %v", err)
	}
	if got := r.Codes(); !reflect.DeepEqual(got, []string{"save", "search"}) {
		t.Errorf("Codes = %v", got)
	}
}

func TestSearchFeature_EnterClearsList(t *testing.T) {
	f, _ := newSearchFeature(&fakeGraphs{}, &fakeHost{})
	var rendered []models.SearchResult
	called := false
	if err := f.Enter(context.Background(), Action{Code: CodeSearch}, func(items []models.SearchResult) {
		called, rendered = true, items
	}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if !called || len(rendered) != 0 {
		t.Errorf("expected empty list render, got called=%v items=%v", called, rendered)
	}
	first := f.Session()
	_ = f.Enter(context.Background(), Action{Code: CodeSearch}, nil)
	if f.Session() == first || f.Session().ID == first.ID {
		t.Error("Enter should start a new session")
	}
}

func TestSearchFeature_Search(t *testing.T) {
	f, s := newSearchFeature(&fakeGraphs{}, &fakeHost{})
	var rendered []models.SearchResult
	out, err := f.Search(context.Background(), Action{Code: CodeSearch}, "alpha", func(items []models.SearchResult) {
		rendered = items
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !out.Applied || out.Generation != 1 || len(out.Items) != 2 {
		t.Errorf("outcome = %+v", out)
	}
	if !reflect.DeepEqual(rendered, out.Items) {
		t.Errorf("rendered %v, outcome %v", rendered, out.Items)
	}
	if !reflect.DeepEqual(s.terms, []string{"alpha"}) {
		t.Errorf("terms = %v", s.terms)
	}
}

func TestSearchFeature_SelectPage(t *testing.T) {
	h := &fakeHost{}
	f, _ := newSearchFeature(&fakeGraphs{graph: &models.Graph{Name: "work notes"}}, h)

	err := f.Select(context.Background(), Action{}, models.SearchResult{Kind: models.KindPage, Title: "Q3 plan & goals"}, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := "logseq://graph/work%20notes?page=Q3%20plan%20%26%20goals"
	if !reflect.DeepEqual(h.opened, []string{want}) {
		t.Errorf("opened = %v, want %s", h.opened, want)
	}
	if h.hidden != 1 || h.exited != 1 {
		t.Errorf("hidden=%d exited=%d", h.hidden, h.exited)
	}
}

func TestSearchFeature_SelectBlock(t *testing.T) {
	h := &fakeHost{}
	f, _ := newSearchFeature(&fakeGraphs{graph: &models.Graph{Name: "g"}}, h)

	_ = f.Select(context.Background(), Action{}, models.SearchResult{Kind: models.KindBlock, Title: "p", Identifier: "6650-abc"}, nil)
	if !reflect.DeepEqual(h.opened, []string{"logseq://graph/g?block-id=6650-abc"}) {
		t.Errorf("opened = %v", h.opened)
	}
}

func TestSearchFeature_SelectMissingFieldsIsNoop(t *testing.T) {
	cases := []struct {
		name  string
		graph *models.Graph
		item  models.SearchResult
	}{
		{"block without identifier", &models.Graph{Name: "g"}, models.SearchResult{Kind: models.KindBlock, Title: "p"}},
		{"page without title", &models.Graph{Name: "g"}, models.SearchResult{Kind: models.KindPage, Identifier: "1"}},
		{"graph without name", &models.Graph{}, models.SearchResult{Kind: models.KindPage, Title: "p"}},
		{"unknown kind", &models.Graph{Name: "g"}, models.SearchResult{Title: "p", Identifier: "1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &fakeHost{}
			f, _ := newSearchFeature(&fakeGraphs{graph: tc.graph}, h)
			if err := f.Select(context.Background(), Action{}, tc.item, nil); err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(h.opened) != 0 || h.hidden != 0 || h.exited != 0 {
				t.Errorf("expected no host calls, got %+v", h)
			}
		})
	}
}

func TestSearchFeature_SelectWithoutGraphIsNoop(t *testing.T) {
	h := &fakeHost{}
	f, _ := newSearchFeature(&fakeGraphs{err: apperr.ErrNoGraph}, h)
	err := f.Select(context.Background(), Action{}, models.SearchResult{Kind: models.KindPage, Title: "x"}, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(h.notes) != 0 || len(h.opened) != 0 || h.hidden != 0 || h.exited != 0 {
		t.Errorf("expected no host calls, got %+v", h)
	}
}

func TestSearchFeature_SelectTransportError(t *testing.T) {
	h := &fakeHost{}
	upstream := &apperr.TransportError{Status: 502, URL: "http://127.0.0.1:12315/api"}
	f, _ := newSearchFeature(&fakeGraphs{err: upstream}, h)
	err := f.Select(context.Background(), Action{}, models.SearchResult{Kind: models.KindPage, Title: "p"}, nil)

	var te *apperr.TransportError
	if !errors.As(err, &te) {
		t.Errorf("err = %v", err)
	}
	if len(h.notes) != 1 || len(h.opened) != 0 {
		t.Errorf("host = %+v", h)
	}
}

type fakeIngester struct {
	texts []string
	urls  []string
	files [][]string
	err   error
}

func (f *fakeIngester) Text(_ context.Context, text string) (string, error) {
	f.texts = append(f.texts, text)
	return "Jan 5th, 2024", f.err
}

func (f *fakeIngester) DataURL(_ context.Context, raw string) (ingest.Item, error) {
	f.urls = append(f.urls, raw)
	return ingest.Item{Page: "Jan 5th, 2024"}, f.err
}

func (f *fakeIngester) Files(_ context.Context, paths []string) ingest.Report {
	f.files = append(f.files, paths)
	items := make([]ingest.Item, len(paths))
	return ingest.Report{Page: "Jan 5th, 2024", Items: items}
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestIngestFeature_Types(t *testing.T) {
	in := &fakeIngester{}
	h := &fakeHost{}
	f := NewIngestFeature(in, h, nil)
	ctx := context.Background()

	if err := f.Enter(ctx, Action{Code: CodeSave, Type: TypeText, Payload: payload(t, "hello")}, nil); err != nil {
		t.Fatalf("text: %v", err)
	}
	if err := f.Enter(ctx, Action{Code: CodeSave, Type: TypeOver, Payload: payload(t, "selected")}, nil); err != nil {
		t.Fatalf("over: %v", err)
	}
	if err := f.Enter(ctx, Action{Code: CodeSave, Type: TypeImage, Payload: payload(t, "data:image/png;base64,AA==")}, nil); err != nil {
		t.Fatalf("img: %v", err)
	}
	files := []map[string]any{
		{"path": "/tmp/a.png", "name": "a.png", "isFile": true},
		{"path": "/tmp/dir", "name": "dir", "isFile": false, "isDirectory": true},
		{"path": "/tmp/b.md", "name": "b.md"},
	}
	if err := f.Enter(ctx, Action{Code: CodeSave, Type: TypeFiles, Payload: payload(t, files)}, nil); err != nil {
		t.Fatalf("files: %v", err)
	}

	if !reflect.DeepEqual(in.texts, []string{"hello", "selected"}) {
		t.Errorf("texts = %v", in.texts)
	}
	if len(in.urls) != 1 {
		t.Errorf("urls = %v", in.urls)
	}
	if !reflect.DeepEqual(in.files, [][]string{{"/tmp/a.png", "/tmp/b.md"}}) {
		t.Errorf("files = %v", in.files)
	}
	wantNotes := []string{"Saved to Jan 5th, 2024", "Saved to Jan 5th, 2024", "Image saved to Jan 5th, 2024", "Saved 2 item(s) to Jan 5th, 2024"}
	if !reflect.DeepEqual(h.notes, wantNotes) {
		t.Errorf("notes = %v", h.notes)
	}
	if h.hidden != 4 || h.exited != 4 {
		t.Errorf("hidden=%d exited=%d", h.hidden, h.exited)
	}
}

func TestIngestFeature_UnknownType(t *testing.T) {
	h := &fakeHost{}
	f := NewIngestFeature(&fakeIngester{}, h, nil)
	err := f.Enter(context.Background(), Action{Code: CodeSave, Type: "window"}, nil)
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
	if h.exited != 0 || len(h.notes) != 0 {
		t.Errorf("unexpected host calls: %+v", h)
	}
}

func TestIngestFeature_FailureIsNotified(t *testing.T) {
	h := &fakeHost{}
	f := NewIngestFeature(&fakeIngester{err: apperr.ErrNoGraph}, h, nil)
	err := f.Enter(context.Background(), Action{Code: CodeSave, Type: TypeText, Payload: payload(t, "x")}, nil)
	if !errors.Is(err, apperr.ErrNoGraph) {
		t.Errorf("err = %v", err)
	}
	if len(h.notes) != 1 || h.exited != 1 {
		t.Errorf("host = %+v", h)
	}
}
