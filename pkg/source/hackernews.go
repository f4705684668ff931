package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// HackerNewsLabel は Hacker News 由来の記事に付けるソース名です。
const HackerNewsLabel = "Hacker News"

// HackerNews は、キーワード検索用の RSS フィードを1本取得するアダプターです。
type HackerNews struct {
	parser   *feed.Parser
	template string
}

// NewHackerNews は、検索URLテンプレートを指定して HackerNews アダプターを生成します。
func NewHackerNews(parser *feed.Parser, template string) *HackerNews {
	return &HackerNews{parser: parser, template: template}
}

func (h *HackerNews) Name() string { return NameHackerNews }

// Search は、検索フィードの先頭から最大 limit 件をスタブとして返します。
func (h *HackerNews) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	if limit <= 0 {
		return []types.ArticleStub{}, nil
	}

	searchURL := buildSearchURL(h.template, keywords, limit)
	zap.L().Debug("Hacker News を検索します", zap.String("url", searchURL))

	parsed, err := h.parser.FetchAndParse(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrap(err, "Hacker News の検索に失敗しました")
	}
	return feed.ItemStubs(parsed, HackerNewsLabel, limit, now()), nil
}
