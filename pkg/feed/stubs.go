package feed

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// DefaultSourceLabel は、フィードにタイトルがない場合のソース名です。
const DefaultSourceLabel = "RSS Feed"

// ItemStub は gofeed.Item を ArticleStub に変換します。
// リンクのないアイテムは識別できないため、false を返します。
func ItemStub(item *gofeed.Item, source string, collectedAt time.Time) (types.ArticleStub, bool) {
	if item == nil || strings.TrimSpace(item.Link) == "" {
		return types.ArticleStub{}, false
	}
	return types.NewStub(item.Title, item.Link, source, PlainText(item.Description), collectedAt), true
}

// ItemStubs は、フィードの先頭から最大 limit 件のリンク付きアイテムを ArticleStub に変換します。
func ItemStubs(f *gofeed.Feed, source string, limit int, collectedAt time.Time) []types.ArticleStub {
	// nil またはアイテムがない場合は、すぐに空のスライスを返します。
	if f == nil || len(f.Items) == 0 || limit <= 0 {
		return []types.ArticleStub{}
	}

	stubs := make([]types.ArticleStub, 0, min(limit, len(f.Items)))
	for _, item := range f.Items {
		if len(stubs) >= limit {
			break
		}
		if stub, ok := ItemStub(item, source, collectedAt); ok {
			stubs = append(stubs, stub)
		}
	}
	return stubs
}

// SourceLabel は、フィードのタイトルをソース名として返します。
func SourceLabel(f *gofeed.Feed) string {
	if f == nil {
		return DefaultSourceLabel
	}
	if title := strings.TrimSpace(f.Title); title != "" {
		return title
	}
	return DefaultSourceLabel
}

// PlainText は、HTML 断片を含み得る文字列からタグを除去し、空白を正規化します。
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return types.CollapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return types.CollapseSpace(fragment)
	}
	return types.CollapseSpace(doc.Text())
}
