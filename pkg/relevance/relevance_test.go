package relevance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// MockCompleter は Completer インターフェースのモックです。
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func stubs(titles ...string) []types.ArticleStub {
	out := make([]types.ArticleStub, 0, len(titles))
	for i, title := range titles {
		out = append(out, types.ArticleStub{
			Title:  title,
			URL:    fmt.Sprintf("https://example.com/%d", i+1),
			Source: "Test",
		})
	}
	return out
}

func urls(in []types.ArticleStub) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.URL)
	}
	return out
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name     string
		response string
		count    int
		expected []int
		wantErr  bool
	}{
		{name: "純粋な配列", response: "[1, 3, 5]", count: 5, expected: []int{0, 2, 4}},
		{name: "前後に説明文", response: "Here are the relevant ones: [2, 1]. Hope this helps!", count: 3, expected: []int{1, 0}},
		{name: "範囲外は除外", response: "[0, 1, 4, -2, 99]", count: 4, expected: []int{0, 3}},
		{name: "重複は除外", response: "[2, 2, 1]", count: 3, expected: []int{1, 0}},
		{name: "整数以外の要素は除外", response: `[1, "2", 2.5, null, 3]`, count: 3, expected: []int{0, 2}},
		{name: "空配列", response: "[]", count: 3, wantErr: true},
		{name: "配列なし", response: "None of these are relevant.", count: 3, wantErr: true},
		{name: "閉じ括弧なし", response: "[1, 2", count: 3, wantErr: true},
		{name: "不正なJSON", response: "[1, two, 3]", count: 3, wantErr: true},
		{name: "すべて範囲外", response: "[7, 8]", count: 3, wantErr: true},
		{name: "最初の配列のみ", response: "[4] or maybe [1]", count: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.response, tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoSelection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	in := []types.ArticleStub{
		{Title: "Go 1.25 released", Source: "Hacker News", Description: strings.Repeat("d", 180)},
		{Title: "Rust news", Source: "Reddit - r/rust"},
	}
	prompt := BuildPrompt("systems programming", in)

	assert.Contains(t, prompt, "User Interests: systems programming")
	assert.Contains(t, prompt, "Article 1:\nTitle: Go 1.25 released\nSource: Hacker News\nDescription: "+strings.Repeat("d", 150)+"\n---\n")
	assert.Contains(t, prompt, "Article 2:\nTitle: Rust news\nSource: Reddit - r/rust\n\nInstructions:")
	assert.NotContains(t, prompt, strings.Repeat("d", 151))
	assert.Contains(t, prompt, "[] if none are relevant")
}

func TestKeywordRanker(t *testing.T) {
	ranker := NewKeywordRanker()
	ctx := context.Background()

	t.Run("トークンが空なら全件", func(t *testing.T) {
		got, err := ranker.Rank(ctx, "", stubs("a", "b", "c"))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, got)
	})

	t.Run("3文字以下のトークンは無視", func(t *testing.T) {
		got, _ := ranker.Rank(ctx, "AI ML the", stubs("AI news", "ML paper"))
		assert.Equal(t, []int{0, 1}, got)
	})

	t.Run("タイトルと説明文を大文字小文字を区別せず照合", func(t *testing.T) {
		in := stubs("Climate Change report", "Football", "Weather")
		in[2].Description = "A new CLIMATE model"
		got, _ := ranker.Rank(ctx, "climate", in)
		assert.Equal(t, []int{0, 2}, got)
	})

	t.Run("一致なしなら先頭10件", func(t *testing.T) {
		in := stubs(strings.Split(strings.Repeat("x,", 12), ",")[:12]...)
		got, _ := ranker.Rank(ctx, "quantum", in)
		assert.Equal(t, firstN(10), got)
	})

	t.Run("上限15件", func(t *testing.T) {
		in := stubs(strings.Split(strings.Repeat("quantum,", 20), ",")[:20]...)
		got, _ := ranker.Rank(ctx, "quantum", in)
		assert.Len(t, got, MaxKeywordResults)

		got, _ = ranker.Rank(ctx, "", in)
		assert.Len(t, got, MaxKeywordResults)
	})
}

func TestFilterSelect(t *testing.T) {
	ctx := context.Background()
	in := stubs("Quantum computing breakthrough", "Celebrity gossip", "Quantum sensors", "Stock market")

	t.Run("分類器モード", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return("Relevant: [3, 1]", nil).Once()

		got, mode := NewFilter(NewClassifierRanker(completer)).SelectWithMode(ctx, "quantum physics", in)
		assert.Equal(t, ModeClassifier, mode)
		assert.Equal(t, []string{in[2].URL, in[0].URL}, urls(got))
		completer.AssertExpectations(t)
	})

	t.Run("分類器の失敗はキーワード照合と同じ結果", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited")).Once()

		got, mode := NewFilter(NewClassifierRanker(completer)).SelectWithMode(ctx, "quantum physics", in)
		want := NewFilter(nil).Select(ctx, "quantum physics", in)
		assert.Equal(t, ModeKeyword, mode)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{in[0].URL, in[2].URL}, urls(got))
	})

	t.Run("不正な応答はキーワード照合", func(t *testing.T) {
		completer := new(MockCompleter)
		completer.On("Complete", mock.Anything, mock.Anything).Return("I cannot decide.", nil).Once()

		_, mode := NewFilter(NewClassifierRanker(completer)).SelectWithMode(ctx, "quantum", in)
		assert.Equal(t, ModeKeyword, mode)
	})

	t.Run("入力が空なら分類器を呼ばない", func(t *testing.T) {
		completer := new(MockCompleter)
		got, mode := NewFilter(NewClassifierRanker(completer)).SelectWithMode(ctx, "quantum", nil)
		assert.Empty(t, got)
		assert.Equal(t, ModeEmpty, mode)
		completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})
}

func TestAnthropicCompleter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Filter these articles")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5",
			"content":[{"type":"text","text":" [1, 2] "}],"stop_reason":"end_turn",
			"usage":{"input_tokens":10,"output_tokens":3}}`)
	}))
	defer server.Close()

	c := NewAnthropicCompleter("test-key", server.URL, "", 500)
	got, err := c.Complete(context.Background(), BuildPrompt("go", stubs("a", "b")))
	require.NoError(t, err)
	assert.Equal(t, "[1, 2]", got)
}

func TestOpenAICompleter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"[2]"}}]}`)
	}))
	defer server.Close()

	c := NewOpenAICompleter("test-key", server.URL, "", 500)
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "[2]", got)
}

func TestCompleterErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	in := stubs("Quantum computing", "Cooking")
	filter := NewFilter(NewClassifierRanker(NewAnthropicCompleter("k", server.URL, "", 500)))
	got, mode := filter.SelectWithMode(context.Background(), "quantum", in)
	assert.Equal(t, ModeKeyword, mode)
	assert.Equal(t, []string{in[0].URL}, urls(got))
}
