// Package source は、外部コンテンツソースごとの検索アダプターを提供します。
// 各アダプターはソース固有の形式を types.ArticleStub に正規化します。
package source

import (
	"context"
	"time"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// アダプター名（ログおよびレポートで利用）
const (
	NameHackerNews = "hacker_news"
	NameReddit     = "reddit"
	NameArxiv      = "arxiv"
	NameFeedScan   = "rss_feeds"
	NameAllSides   = "allsides"
)

// Adapter は、1つの外部ソースをキーワード検索し、正規化済みの記事スタブを返します。
// 失敗時はエラーを返し、呼び出し側はそれを「このソースは0件」として扱います。
type Adapter interface {
	Name() string
	Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error)
}

// now は収集時刻の取得に使われます。テストで差し替え可能です。
var now = time.Now

// NewAdapters は、Registry と Fetcher から全アダプターを既定の呼び出し順で生成します。
// この順序は重複排除時の優先順位になります。
func NewAdapters(reg Registry, fetcher client.Fetcher) []Adapter {
	reg = reg.Clone()
	parser := feed.NewParser(fetcher)
	return []Adapter{
		NewHackerNews(parser, reg.HackerNewsSearchURL),
		NewReddit(fetcher, reg.RedditSearchURL),
		NewArxiv(parser, reg.ArxivSearchURL),
		NewFeedScan(parser, reg.NewsFeeds),
		NewAllSides(fetcher, reg.AllSidesSearchURL),
	}
}
