package source

import (
	"bytes"
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

const (
	// AllSidesLabel は HTML 検索結果由来の記事に付けるソース名です。
	AllSidesLabel = "AllSides"
	// minAnchorTextLength を超える長さのリンクテキストのみを記事リンクとみなします。
	minAnchorTextLength = 20
)

// AllSides は、サイト内検索の結果ページ HTML からリンクを拾うフォールバック用アダプターです。
type AllSides struct {
	client   client.Fetcher
	template string
}

// NewAllSides は、検索URLテンプレートを指定して AllSides アダプターを生成します。
func NewAllSides(fetcher client.Fetcher, template string) *AllSides {
	return &AllSides{client: fetcher, template: template}
}

func (a *AllSides) Name() string { return NameAllSides }

// Search は、検索結果ページ内のアンカーのうち記事リンクらしいものを最大 limit 件返します。
func (a *AllSides) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	if limit <= 0 {
		return []types.ArticleStub{}, nil
	}

	searchURL := buildSearchURL(a.template, keywords, limit)
	zap.L().Debug("AllSides を検索します", zap.String("url", searchURL))

	body, err := a.client.FetchBytes(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "AllSides の検索結果の取得に失敗しました (URL: %s)", searchURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "AllSides の検索結果のパースに失敗しました (URL: %s)", searchURL)
	}

	collectedAt := now()
	stubs := make([]types.ArticleStub, 0, limit)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		title := types.CollapseSpace(s.Text())
		if types.RuneLen(title) <= minAnchorTextLength || !isAbsoluteHTTP(href) {
			return true
		}
		stubs = append(stubs, types.NewStub(title, href, AllSidesLabel, "", collectedAt))
		return len(stubs) < limit
	})
	return stubs, nil
}

// isAbsoluteHTTP は、href が http または https のスキームを持つ絶対URLかを判定します。
func isAbsoluteHTTP(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
