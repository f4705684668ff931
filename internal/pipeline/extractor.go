package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ikenna-e/ai-article-scraper/internal/config"
	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/extract"
	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// ExtractURLContent は、URLから本文テキストを取得する単発の処理パイプラインです。
// セッションは呼び出しごとに確保し、終了時に解放します。
func ExtractURLContent(ctx context.Context, cfg *config.Config, rawURL string) (string, error) {
	// 1. HTTP セッションを確保 (依存性の初期化)
	session := client.Open(cfg.SessionOptions())
	defer session.Close()

	// 2. Extractor を初期化 (DI)
	extractor, err := newExtractor(cfg, session)
	if err != nil {
		return "", err
	}

	// 3. 抽出の実行
	text, err := extractor.ExtractText(ctx, rawURL)
	if err != nil {
		return "", eris.Wrap(err, "コンテンツ抽出エラー")
	}
	return text, nil
}

// ParseFeedStubs は、1本のフィードを取得して記事スタブに正規化します。
func ParseFeedStubs(ctx context.Context, cfg *config.Config, feedURL string, limit int) (string, []types.ArticleStub, error) {
	session := client.Open(cfg.SessionOptions())
	defer session.Close()

	parsed, err := feed.NewParser(session).FetchAndParse(ctx, feedURL)
	if err != nil {
		return "", nil, err
	}
	return feed.SourceLabel(parsed), feed.ItemStubs(parsed, feed.SourceLabel(parsed), limit, time.Now()), nil
}

func newExtractor(cfg *config.Config, fetcher client.Fetcher) (*extract.Extractor, error) {
	extractor, err := extract.NewExtractor(fetcher,
		extract.WithTimeout(time.Duration(cfg.Extract.TimeoutSecs)*time.Second))
	if err != nil {
		return nil, eris.Wrap(err, "Extractorの初期化エラー")
	}
	return extractor, nil
}
