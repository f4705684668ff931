// Package relevance は、収集した記事スタブをユーザーの関心に沿って絞り込みます。
//
// 外部の分類器（LLM）が利用できる場合はその判定を使い、利用できない場合や応答が
// 不正な場合は、決定的なキーワード照合にフォールバックします。
package relevance

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// ErrNoSelection は、分類器の応答から有効な記事番号を1つも取り出せなかったことを示します。
var ErrNoSelection = eris.New("分類器の応答から有効な記事番号を取得できませんでした")

// Ranker は、記事スタブ列のうち関心に合致するものの位置（0始まり）を順位順に返します。
type Ranker interface {
	Rank(ctx context.Context, interests string, stubs []types.ArticleStub) ([]int, error)
}

// Mode は、1回の絞り込みで実際に使われた方式です。
type Mode string

const (
	ModeClassifier Mode = "classifier"
	ModeKeyword    Mode = "keyword"
	ModeEmpty      Mode = "empty"
)

// Filter は、分類器とキーワード照合を切り替える関連度フィルターです。
// 方式の選択は記事単位ではなく1回の実行ごとに行われます。
type Filter struct {
	classifier Ranker
	fallback   *KeywordRanker
}

// NewFilter は Filter を生成します。classifier が nil の場合は常にキーワード照合を使います。
func NewFilter(classifier Ranker) *Filter {
	return &Filter{classifier: classifier, fallback: NewKeywordRanker()}
}

// Select は、関心に合致する記事スタブを返します。入力が空でない限り、結果が空になることはありません。
func (f *Filter) Select(ctx context.Context, interests string, stubs []types.ArticleStub) []types.ArticleStub {
	selected, _ := f.SelectWithMode(ctx, interests, stubs)
	return selected
}

// SelectWithMode は Select と同じ結果に加え、使われた方式を返します。
func (f *Filter) SelectWithMode(ctx context.Context, interests string, stubs []types.ArticleStub) ([]types.ArticleStub, Mode) {
	if len(stubs) == 0 {
		return []types.ArticleStub{}, ModeEmpty
	}

	if f.classifier != nil {
		indices, err := f.classifier.Rank(ctx, interests, stubs)
		if err == nil && len(indices) > 0 {
			zap.L().Info("分類器で記事を絞り込みました",
				zap.Int("candidates", len(stubs)),
				zap.Int("selected", len(indices)))
			return pick(stubs, indices), ModeClassifier
		}
		zap.L().Warn("分類器を利用できないため、キーワード照合に切り替えます", zap.Error(err))
	}

	// KeywordRanker はエラーを返さない
	indices, _ := f.fallback.Rank(ctx, interests, stubs)
	zap.L().Info("キーワード照合で記事を絞り込みました",
		zap.Int("candidates", len(stubs)),
		zap.Int("selected", len(indices)))
	return pick(stubs, indices), ModeKeyword
}

func pick(stubs []types.ArticleStub, indices []int) []types.ArticleStub {
	out := make([]types.ArticleStub, 0, len(indices))
	for _, i := range indices {
		out = append(out, stubs[i])
	}
	return out
}
