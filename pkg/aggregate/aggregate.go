// Package aggregate は、全ソースの並列検索から重複排除、関連度フィルター、
// 本文プレビューの付与までを1回のリクエストとして調整します。
package aggregate

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/relevance"
	"github.com/ikenna-e/ai-article-scraper/pkg/scraper"
	"github.com/ikenna-e/ai-article-scraper/pkg/source"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

var (
	// ErrEmptyKeywords は、検索キーワードが空の場合に返されます。
	ErrEmptyKeywords = eris.New("検索キーワードを指定してください")
	// ErrInvalidResultCount は、取得件数が1未満の場合に返されます。
	ErrInvalidResultCount = eris.New("取得件数には1以上の整数を指定してください")
)

// Session は、1回の検索の間だけ使われる HTTP 接続プールです。
type Session interface {
	client.Fetcher
	Close()
}

type (
	// SessionFactory は検索ごとに新しい Session を生成します。
	SessionFactory func() Session
	// AdapterFactory は、Session を使うソースアダプターを呼び出し順に生成します。
	AdapterFactory func(fetcher client.Fetcher) []source.Adapter
	// EnricherFactory は、Session を使う本文プレビュー付与処理を生成します。
	EnricherFactory func(fetcher client.Fetcher) (scraper.Enricher, error)
)

// Dependencies は Aggregator の依存関係です。
type Dependencies struct {
	OpenSession SessionFactory
	Adapters    AdapterFactory
	Filter      *relevance.Filter
	Enricher    EnricherFactory
}

// Aggregator は、記事検索パイプライン全体を調整します。
// リクエスト間で共有する可変状態は持ちません。
type Aggregator struct {
	openSession SessionFactory
	adapters    AdapterFactory
	filter      *relevance.Filter
	enricher    EnricherFactory
}

// New は Aggregator を生成します。
func New(deps Dependencies) (*Aggregator, error) {
	if deps.OpenSession == nil || deps.Adapters == nil || deps.Enricher == nil {
		return nil, eris.New("aggregate.New: OpenSession, Adapters, Enricher は必須です")
	}
	filter := deps.Filter
	if filter == nil {
		filter = relevance.NewFilter(nil)
	}
	return &Aggregator{
		openSession: deps.OpenSession,
		adapters:    deps.Adapters,
		filter:      filter,
		enricher:    deps.Enricher,
	}, nil
}

// Search は、キーワードで全ソースを検索し、関心に沿って絞り込んだ最大 numResults 件の記事を返します。
// 入力値の不備以外でエラーを返すことはありません。
func (a *Aggregator) Search(ctx context.Context, keywords, interests string, numResults int) ([]types.Article, error) {
	articles, _, err := a.SearchWithReport(ctx, keywords, interests, numResults)
	return articles, err
}

// SearchWithReport は Search と同じ処理を行い、ソースごとの件数などの実行レポートも返します。
func (a *Aggregator) SearchWithReport(ctx context.Context, keywords, interests string, numResults int) ([]types.Article, Report, error) {
	keywords = strings.TrimSpace(keywords)
	interests = strings.TrimSpace(interests)

	// 1. 入力値の検証（ネットワークアクセスの前に行う）
	if keywords == "" {
		return nil, Report{}, ErrEmptyKeywords
	}
	if numResults <= 0 {
		return nil, Report{}, ErrInvalidResultCount
	}

	started := time.Now()
	report := Report{RequestID: uuid.NewString(), Keywords: keywords}
	logger := zap.L().With(zap.String("request_id", report.RequestID))
	logger.Info("記事検索を開始します",
		zap.String("keywords", keywords),
		zap.String("interests", interests),
		zap.Int("num_results", numResults))

	// 2. この検索専用のセッションを確保し、終了時に必ず解放する
	session := a.openSession()
	defer session.Close()

	// 3. 全ソースを並列に検索
	results := gather(ctx, logger, a.adapters(session), keywords, numResults)

	// 4. 結合と重複排除
	stubs := Dedupe(results)
	report.Sources = sourceReports(results, numResults)
	report.Collected = countStubs(results)
	report.Unique = len(stubs)

	// 5. 関連度フィルター
	filtered, mode := a.filter.SelectWithMode(ctx, interests, stubs)
	report.Mode = mode
	report.Filtered = len(filtered)

	// 6. 件数の切り詰めと本文プレビューの付与
	if len(filtered) > numResults {
		filtered = filtered[:numResults]
	}
	articles := a.enrich(ctx, logger, session, filtered)

	report.Returned = len(articles)
	report.Duration = time.Since(started)
	logger.Info("記事検索が完了しました",
		zap.Int("collected", report.Collected),
		zap.Int("unique", report.Unique),
		zap.String("mode", string(report.Mode)),
		zap.Int("returned", report.Returned),
		zap.Duration("duration", report.Duration))

	return articles, report, nil
}

// enrich は本文プレビューを付与します。付与処理を用意できない場合は、プレビューなしの記事を返します。
func (a *Aggregator) enrich(ctx context.Context, logger *zap.Logger, fetcher client.Fetcher, stubs []types.ArticleStub) []types.Article {
	enricher, err := a.enricher(fetcher)
	if err == nil && enricher == nil {
		err = eris.New("本文プレビューの付与処理が nil です")
	}
	if err != nil {
		logger.Warn("本文プレビューを付与せずに結果を返します", zap.Error(err))
		articles := make([]types.Article, len(stubs))
		for i, stub := range stubs {
			articles[i] = stub.Promote()
		}
		return articles
	}
	return enricher.Enrich(ctx, stubs)
}

// Dedupe は、ソースの結果を呼び出し順に連結し、URL が同一の記事は最初に現れたものだけを残します。
func Dedupe(results []types.SourceResult) []types.ArticleStub {
	seen := make(map[string]struct{})
	var stubs []types.ArticleStub
	for _, res := range results {
		for _, stub := range res.Stubs {
			if _, dup := seen[stub.URL]; dup {
				continue
			}
			seen[stub.URL] = struct{}{}
			stubs = append(stubs, stub)
		}
	}
	return stubs
}

func countStubs(results []types.SourceResult) int {
	total := 0
	for _, res := range results {
		total += len(res.Stubs)
	}
	return total
}
