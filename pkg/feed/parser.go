package feed

import (
	"bytes"
	"context"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/rotisserie/eris"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
)

// Parser は、Fetcher で取得したバイト列を RSS/Atom フィードとして解析します。
type Parser struct {
	client client.Fetcher // インターフェースに依存
}

// NewParser は新しい Parser インスタンスを初期化し、依存関係を注入します。
func NewParser(fetcher client.Fetcher) *Parser {
	return &Parser{client: fetcher}
}

// FetchAndParse は指定されたURLからフィードを取得し、形式を自動判別してパースします。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, eris.Wrapf(err, "フィードの取得失敗 (URL: %s)", feedURL)
	}

	fp := gofeed.NewParser()
	parsed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "RSSフィードのパース失敗 (URL: %s)", feedURL)
	}
	return parsed, nil
}

// FetchAndParseAtom は、Atom 名前空間の entry 要素をそのまま扱いたい API 向けに、
// 汎用フィードへの変換を行わずに Atom 文書としてパースします。
func (p *Parser) FetchAndParseAtom(ctx context.Context, feedURL string) (*atom.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, eris.Wrapf(err, "Atomフィードの取得失敗 (URL: %s)", feedURL)
	}

	ap := &atom.Parser{}
	parsed, err := ap.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "Atomフィードのパース失敗 (URL: %s)", feedURL)
	}
	return parsed, nil
}
