package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/rpc"
	"github.com/starford/quickseq/internal/search"
	"github.com/starford/quickseq/internal/testutil"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

// routeQueries answers page and block queries differently based on the template.
func routeQueries(pages, blocks any, pageStatus, blockStatus int) testutil.Handler {
	return func(args []json.RawMessage) (any, int) {
		var tmpl string
		_ = json.Unmarshal(args[0], &tmpl)
		if strings.Contains(tmpl, ":block/content") {
			return blocks, blockStatus
		}
		return pages, pageStatus
	}
}

var pageRows = []any{
	[]any{map[string]any{"id": 11, "uuid": "p-1", "originalName": "Project Alpha", "name": "project alpha", "properties": map[string]any{"tags": []string{"work", "#q3"}}}},
	[]any{map[string]any{"id": 11, "uuid": "p-1", "originalName": "Project Alpha"}},
	[]any{map[string]any{"id": 12, "uuid": "p-2", "original-name": "Alpha notes", "properties": map[string]any{"tags": "a, b"}}},
}

var blockRows = []any{
	[]any{map[string]any{"id": 21, "uuid": "b-1", "content": "alpha launch\nid:: b-1", "page": map[string]any{"originalName": "Project Alpha"}}},
	[]any{map[string]any{"id": 22, "uuid": "b-2", "content": "orphan alpha"}},
}

func TestSearchPagesAndBlocks_Shapes(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Handle(rpc.MethodDatascriptQuery, routeQueries(pageRows, blockRows, 0, 0))

	svc := search.NewService(ns.Client(), nil)
	res := svc.SearchPagesAndBlocks(context.Background(), "alpha")

	require.Len(t, res.Pages, 2)
	assert.Equal(t, models.SearchResult{Kind: models.KindPage, Title: "Project Alpha", Tags: []string{"#work", "#q3"}, Identifier: "11"}, res.Pages[0])
	assert.Equal(t, "Alpha notes", res.Pages[1].Title)
	assert.Equal(t, []string{"#a", "#b"}, res.Pages[1].Tags)

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, models.SearchResult{Kind: models.KindBlock, Title: "Project Alpha", Content: "alpha launch", Identifier: "b-1"}, res.Blocks[0])
	assert.Equal(t, models.UnknownPage, res.Blocks[1].Title)

	list := res.List()
	require.Len(t, list, 4)
	assert.Equal(t, models.KindPage, list[0].Kind)
	assert.Equal(t, models.KindBlock, list[3].Kind)
}

func TestSearchPagesAndBlocks_TermIsBoundAsInput(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Reply(rpc.MethodDatascriptQuery, []any{})

	term := `x"] [(evil)`
	svc := search.NewService(ns.Client(), nil)
	svc.SearchPagesAndBlocks(context.Background(), term)

	calls := ns.CallsTo(rpc.MethodDatascriptQuery)
	require.Len(t, calls, 2)
	for _, c := range calls {
		require.Len(t, c.Args, 2)
		var tmpl, input string
		require.NoError(t, c.Arg(0, &tmpl))
		require.NoError(t, c.Arg(1, &input))
		assert.NotContains(t, tmpl, "evil")
		assert.Equal(t, `"x\"] [(evil)"`, input)
	}
}

func TestSearchPagesAndBlocks_FailedHalf(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Handle(rpc.MethodDatascriptQuery, routeQueries(pageRows, nil, 0, http.StatusInternalServerError))

	n := &recordingNotifier{}
	svc := search.NewService(ns.Client(), n)
	res := svc.SearchPagesAndBlocks(context.Background(), "alpha")

	assert.Len(t, res.Pages, 2)
	assert.Empty(t, res.Blocks)
	assert.NotNil(t, res.Blocks)
	require.Len(t, n.Messages(), 1)
	assert.Contains(t, n.Messages()[0], "blocks")
}

func TestSearchPagesAndBlocks_BothFail(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Fail(rpc.MethodDatascriptQuery, http.StatusBadGateway)

	n := &recordingNotifier{}
	res := search.NewService(ns.Client(), n).SearchPagesAndBlocks(context.Background(), "alpha")

	assert.Empty(t, res.List())
	assert.Len(t, n.Messages(), 2)
}

func TestSearchPagesAndBlocks_EmptyTerm(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	res := search.NewService(ns.Client(), nil).SearchPagesAndBlocks(context.Background(), "")

	assert.Empty(t, res.List())
	assert.NotNil(t, res.Pages)
	assert.NotNil(t, res.Blocks)
	assert.Empty(t, ns.Calls())
}

func TestSearchPagesAndBlocks_WhitespaceTermIsQueried(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Handle(rpc.MethodDatascriptQuery, routeQueries(pageRows, blockRows, 0, 0))

	res := search.NewService(ns.Client(), nil).SearchPagesAndBlocks(context.Background(), " ")

	calls := ns.CallsTo(rpc.MethodDatascriptQuery)
	require.Len(t, calls, 2)
	for _, c := range calls {
		var input string
		require.NoError(t, c.Arg(1, &input))
		assert.Equal(t, `" "`, input)
	}
	assert.Len(t, res.List(), 4)
}

func TestSearchPagesAndBlocks_Limit(t *testing.T) {
	ns := testutil.NewNoteStore(t)
	ns.Handle(rpc.MethodDatascriptQuery, routeQueries(pageRows, blockRows, 0, 0))

	res := search.NewService(ns.Client(), nil, search.WithLimit(1)).SearchPagesAndBlocks(context.Background(), "alpha")
	assert.Len(t, res.Pages, 1)
	assert.Len(t, res.Blocks, 1)
}

// gatedSearcher blocks the term "a" until release is closed.
type gatedSearcher struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSearcher) SearchPagesAndBlocks(ctx context.Context, term string) search.Results {
	if term == "a" {
		close(g.started)
		<-g.release
	}
	return search.Results{Pages: []models.SearchResult{{Kind: models.KindPage, Title: term}}}
}

func TestSession_StaleResponseDiscarded(t *testing.T) {
	g := &gatedSearcher{started: make(chan struct{}), release: make(chan struct{})}
	sess := search.NewSession("s1", g)

	var mu sync.Mutex
	var rendered [][]models.SearchResult
	render := func(items []models.SearchResult) {
		mu.Lock()
		defer mu.Unlock()
		rendered = append(rendered, items)
	}

	type outcome struct {
		gen     uint64
		applied bool
	}
	slow := make(chan outcome, 1)
	go func() {
		gen, applied := sess.Search(context.Background(), "a", render)
		slow <- outcome{gen, applied}
	}()
	<-g.started

	gen, applied := sess.Search(context.Background(), "ab", render)
	assert.True(t, applied)
	assert.Equal(t, uint64(2), gen)

	close(g.release)
	first := <-slow
	assert.False(t, first.applied)
	assert.Equal(t, uint64(1), first.gen)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, rendered, 1)
	assert.Equal(t, "ab", rendered[0][0].Title)
	assert.Equal(t, "ab", sess.Term())
}

// blockingSearcher waits for cancellation and reports whether it saw it.
type blockingSearcher struct {
	started   chan struct{}
	cancelled chan struct{}
}

func (b *blockingSearcher) SearchPagesAndBlocks(ctx context.Context, term string) search.Results {
	if term == "slow" {
		close(b.started)
		<-ctx.Done()
		close(b.cancelled)
	}
	return search.Results{}
}

func TestSession_NewSearchCancelsPrevious(t *testing.T) {
	b := &blockingSearcher{started: make(chan struct{}), cancelled: make(chan struct{})}
	sess := search.NewSession("s1", b)

	done := make(chan bool, 1)
	go func() {
		_, applied := sess.Search(context.Background(), "slow", nil)
		done <- applied
	}()
	<-b.started

	_, applied := sess.Search(context.Background(), "fast", nil)
	assert.True(t, applied)
	<-b.cancelled
	assert.False(t, <-done)
}

func TestSession_ResetInvalidates(t *testing.T) {
	g := &gatedSearcher{started: make(chan struct{}), release: make(chan struct{})}
	sess := search.NewSession("s1", g)

	done := make(chan bool, 1)
	go func() {
		_, applied := sess.Search(context.Background(), "a", func([]models.SearchResult) {
			t.Error("render after reset")
		})
		done <- applied
	}()
	<-g.started
	sess.Reset()
	close(g.release)

	assert.False(t, <-done)
	assert.Empty(t, sess.Term())
}
