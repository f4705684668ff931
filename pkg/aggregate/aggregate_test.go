package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/relevance"
	"github.com/ikenna-e/ai-article-scraper/pkg/scraper"
	"github.com/ikenna-e/ai-article-scraper/pkg/source"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// fakeSession はネットワークに接続しない Session です。
type fakeSession struct {
	closed atomic.Bool
}

func (s *fakeSession) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (s *fakeSession) Close() { s.closed.Store(true) }

// fakeAdapter は固定の結果を返すアダプターです。
type fakeAdapter struct {
	name      string
	stubs     []types.ArticleStub
	err       error
	panicWith any
	gotLimit  atomic.Int64
	called    atomic.Bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	f.called.Store(true)
	f.gotLimit.Store(int64(limit))
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.stubs, f.err
}

// fakeExtractor は URL をそのまま本文として返します。
type fakeExtractor struct {
	body func(url string) string
}

func (f fakeExtractor) Extract(ctx context.Context, url string) string { return f.body(url) }

func stub(source, url, title string) types.ArticleStub {
	return types.ArticleStub{Title: title, URL: url, Source: source, Timestamp: "2025-01-01T00:00:00Z"}
}

func stubsFor(source string, n int) []types.ArticleStub {
	out := make([]types.ArticleStub, n)
	for i := range out {
		out[i] = stub(source, fmt.Sprintf("https://%s.example/%d", source, i), fmt.Sprintf("%s %d", source, i))
	}
	return out
}

type harness struct {
	session  *fakeSession
	adapters []*fakeAdapter
	agg      *Aggregator
}

func newHarness(t *testing.T, adapters []*fakeAdapter, body func(string) string) *harness {
	t.Helper()
	h := &harness{session: &fakeSession{}, adapters: adapters}
	if body == nil {
		body = func(string) string { return "" }
	}
	agg, err := New(Dependencies{
		OpenSession: func() Session { return h.session },
		Adapters: func(fetcher client.Fetcher) []source.Adapter {
			out := make([]source.Adapter, len(adapters))
			for i, a := range adapters {
				out[i] = a
			}
			return out
		},
		Enricher: func(fetcher client.Fetcher) (scraper.Enricher, error) {
			return scraper.NewParallelScraper(fakeExtractor{body: body}), nil
		},
	})
	require.NoError(t, err)
	h.agg = agg
	return h
}

func fiveAdapters() []*fakeAdapter {
	return []*fakeAdapter{
		{name: source.NameHackerNews},
		{name: source.NameReddit},
		{name: source.NameArxiv},
		{name: source.NameFeedScan},
		{name: source.NameAllSides},
	}
}

func TestSearchInvalidInput(t *testing.T) {
	h := newHarness(t, fiveAdapters(), nil)
	opened := false
	h.agg.openSession = func() Session { opened = true; return h.session }

	_, err := h.agg.Search(context.Background(), "   ", "", 10)
	assert.ErrorIs(t, err, ErrEmptyKeywords)

	_, err = h.agg.Search(context.Background(), "ai", "", 0)
	assert.ErrorIs(t, err, ErrInvalidResultCount)

	assert.False(t, opened, "入力不備ではネットワークにアクセスしない")
	for _, a := range h.adapters {
		assert.False(t, a.called.Load())
	}
}

func TestSearchEmptyInterestKeepsAll(t *testing.T) {
	adapters := fiveAdapters()
	adapters[0].stubs = stubsFor("hn", 3)
	h := newHarness(t, adapters, func(url string) string { return strings.Repeat("body ", 300) })

	articles, err := h.agg.Search(context.Background(), "AI", "", 10)
	require.NoError(t, err)
	require.Len(t, articles, 3)
	for _, a := range articles {
		require.NotNil(t, a.ContentPreview)
		assert.LessOrEqual(t, len([]rune(*a.ContentPreview)), types.MaxPreviewLength+len(types.PreviewEllipsis))
	}
	assert.True(t, h.session.closed.Load(), "セッションは必ず解放される")
}

func TestSearchDedupeFirstWins(t *testing.T) {
	adapters := fiveAdapters()
	adapters[1].stubs = []types.ArticleStub{stub("Reddit - r/go", "https://same.example/a", "Reddit title")}
	adapters[3].stubs = []types.ArticleStub{stub("BBC", "https://same.example/a", "Feed title")}
	h := newHarness(t, adapters, nil)

	articles, report, err := h.agg.SearchWithReport(context.Background(), "go", "", 20)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Reddit title", articles[0].Title)
	assert.Equal(t, 2, report.Collected)
	assert.Equal(t, 1, report.Unique)
}

func TestSearchPartialFailure(t *testing.T) {
	adapters := fiveAdapters()
	adapters[0].err = errors.New("timeout")
	adapters[1].panicWith = "nil map write"
	adapters[2].err = errors.New("HTTPエラー: 503")
	adapters[3].stubs = stubsFor("feed", 4)
	adapters[4].err = errors.New("parse error")
	h := newHarness(t, adapters, nil)

	articles, report, err := h.agg.SearchWithReport(context.Background(), "climate", "", 20)
	require.NoError(t, err)
	require.Len(t, articles, 4)
	assert.Equal(t, "https://feed.example/0", articles[0].URL)
	assert.Nil(t, articles[0].ContentPreview)

	require.Len(t, report.Sources, 5)
	assert.Contains(t, report.Sources[1].Error, "パニック")
	assert.Empty(t, report.Sources[3].Error)
	assert.Equal(t, 4, report.Sources[3].Count)
	assert.Equal(t, relevance.ModeKeyword, report.Mode)
}

func TestSearchAllFailReturnsEmpty(t *testing.T) {
	adapters := fiveAdapters()
	for _, a := range adapters {
		a.err = errors.New("down")
	}
	h := newHarness(t, adapters, nil)

	articles, err := h.agg.Search(context.Background(), "anything", "interests", 10)
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.True(t, h.session.closed.Load())
}

func TestSearchBounding(t *testing.T) {
	adapters := fiveAdapters()
	adapters[0].stubs = stubsFor("hn", 5)
	adapters[3].stubs = stubsFor("feed", 10)
	h := newHarness(t, adapters, nil)

	articles, err := h.agg.Search(context.Background(), "x", "", 8)
	require.NoError(t, err)
	assert.Len(t, articles, 8)

	assert.Equal(t, int64(2), adapters[0].gotLimit.Load())
	assert.Equal(t, int64(2), adapters[1].gotLimit.Load())
	assert.Equal(t, int64(2), adapters[2].gotLimit.Load())
	assert.Equal(t, int64(4), adapters[3].gotLimit.Load())
	assert.Equal(t, int64(2), adapters[4].gotLimit.Load())
}

func TestSearchTruncatesToNumResults(t *testing.T) {
	adapters := fiveAdapters()
	adapters[3].stubs = stubsFor("feed", 20)
	h := newHarness(t, adapters, nil)

	articles, err := h.agg.Search(context.Background(), "x", "", 40)
	require.NoError(t, err)
	assert.Len(t, articles, relevance.MaxKeywordResults)

	articles, err = h.agg.Search(context.Background(), "x", "", 3)
	require.NoError(t, err)
	assert.Len(t, articles, 3)
}

func TestBudget(t *testing.T) {
	tests := []struct {
		name     string
		adapter  string
		n        int
		expected int
	}{
		{"hn_quarter", source.NameHackerNews, 20, 5},
		{"reddit_quarter", source.NameReddit, 20, 5},
		{"arxiv_capped", source.NameArxiv, 40, 5},
		{"arxiv_quarter", source.NameArxiv, 12, 3},
		{"feeds_half", source.NameFeedScan, 20, 10},
		{"allsides_quarter", source.NameAllSides, 20, 5},
		{"small_request", source.NameHackerNews, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Budget(tt.adapter, tt.n))
		})
	}
}

func TestDedupe(t *testing.T) {
	results := []types.SourceResult{
		{Source: "a", Stubs: []types.ArticleStub{stub("a", "u1", "A1"), stub("a", "u2", "A2"), stub("a", "u1", "A1 again")}},
		{Source: "b", Error: errors.New("down")},
		{Source: "c", Stubs: []types.ArticleStub{stub("c", "u2", "C2"), stub("c", "u3", "C3")}},
	}
	got := Dedupe(results)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A1", "A2", "C3"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestSearchWithoutEnricherReturnsArticles(t *testing.T) {
	adapters := fiveAdapters()
	adapters[0].stubs = stubsFor("hn", 2)
	h := newHarness(t, adapters, nil)
	h.agg.enricher = func(fetcher client.Fetcher) (scraper.Enricher, error) {
		return nil, errors.New("extractor unavailable")
	}

	articles, err := h.agg.Search(context.Background(), "AI", "", 10)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	for _, a := range articles {
		assert.Nil(t, a.ContentPreview)
	}
	assert.True(t, h.session.closed.Load())
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}
