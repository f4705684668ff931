package relevance

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

const (
	// MinTokenLength を超える長さのトークンのみを照合に使います（短い語はストップワードとみなす）。
	MinTokenLength = 3
	// MaxKeywordResults は、キーワード照合の結果件数の上限です。
	MaxKeywordResults = 15
	// NoMatchResults は、一致が0件だった場合に先頭から採用する件数です。
	NoMatchResults = 10
)

// KeywordRanker は、関心テキストのトークンを部分一致で照合する決定的な Ranker です。
type KeywordRanker struct{}

func NewKeywordRanker() *KeywordRanker {
	return &KeywordRanker{}
}

// Rank は、いずれかのトークンをタイトルまたは説明文に含む記事の位置を返します。
//
//   - 有効なトークンがない場合は全件（上限あり）を返す
//   - 1件も一致しない場合は先頭 NoMatchResults 件を返す
func (k *KeywordRanker) Rank(_ context.Context, interests string, stubs []types.ArticleStub) ([]int, error) {
	tokens := Tokens(interests)

	var indices []int
	switch {
	case len(tokens) == 0:
		indices = firstN(len(stubs))
	default:
		for i, stub := range stubs {
			if matches(tokens, stub) {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			indices = firstN(min(len(stubs), NoMatchResults))
		}
	}

	if len(indices) > MaxKeywordResults {
		indices = indices[:MaxKeywordResults]
	}
	return indices, nil
}

// Tokens は、関心テキストを小文字化して空白で分割し、MinTokenLength 文字を超えるものだけを返します。
func Tokens(interests string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(interests)) {
		if utf8.RuneCountInString(field) > MinTokenLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func matches(tokens []string, stub types.ArticleStub) bool {
	title := strings.ToLower(stub.Title)
	description := strings.ToLower(stub.Description)
	for _, token := range tokens {
		if strings.Contains(title, token) || strings.Contains(description, token) {
			return true
		}
	}
	return false
}

func firstN(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
