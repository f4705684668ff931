package scraper

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ikenna-e/ai-article-scraper/pkg/extract"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

const (
	// DefaultMaxConcurrency は、本文取得の既定の同時実行数です。1 の場合は逐次処理になります。
	DefaultMaxConcurrency = 1
	// DefaultMaxEnriched は、本文プレビューを付与する先頭記事の件数です。
	DefaultMaxEnriched = 10
)

// Enricher は、記事スタブに本文プレビューを付与するインターフェースです。
type Enricher interface {
	Enrich(ctx context.Context, stubs []types.ArticleStub) []types.Article
}

// ParallelScraper は Enricher インターフェースを実装する構造体です。
// 同時実行数とリクエスト間隔を制限しながら本文を取得します。
type ParallelScraper struct {
	extractor      extract.TextExtractor
	maxConcurrency int           // 最大並列数を保持するフィールド
	maxEnriched    int           // プレビューを付与する件数
	limiter        *rate.Limiter // nil の場合は間隔を制限しない
}

// Option は ParallelScraper の設定を変更します。
type Option func(*ParallelScraper)

// WithConcurrency は最大同時実行数を設定します。0以下の値は無視されます。
func WithConcurrency(n int) Option {
	return func(s *ParallelScraper) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithRateLimit は、1秒あたりのリクエスト数の上限を設定します。0以下の場合は制限しません。
func WithRateLimit(perSecond float64) Option {
	return func(s *ParallelScraper) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			s.limiter = nil
		}
	}
}

// WithMaxEnriched は、プレビューを付与する先頭記事の件数を設定します。負の値は無視されます。
func WithMaxEnriched(n int) Option {
	return func(s *ParallelScraper) {
		if n >= 0 {
			s.maxEnriched = n
		}
	}
}

// NewParallelScraper は ParallelScraper を初期化します。
func NewParallelScraper(extractor extract.TextExtractor, opts ...Option) *ParallelScraper {
	s := &ParallelScraper{
		extractor:      extractor,
		maxConcurrency: DefaultMaxConcurrency,
		maxEnriched:    DefaultMaxEnriched,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich は、入力順を保ったまま全スタブを Article に変換し、先頭 maxEnriched 件に本文プレビューを付与します。
// 抽出に失敗した記事はプレビューなしのまま返されます。
func (s *ParallelScraper) Enrich(ctx context.Context, stubs []types.ArticleStub) []types.Article {
	articles := make([]types.Article, len(stubs))
	for i, stub := range stubs {
		articles[i] = stub.Promote()
	}

	targets := min(len(articles), s.maxEnriched)
	if targets == 0 {
		return articles
	}

	var wg sync.WaitGroup

	// バッファ付きチャネルをセマフォとして使用し、同時実行数を制限する
	semaphore := make(chan struct{}, s.maxConcurrency)

	for i := 0; i < targets; i++ {
		wg.Add(1)

		// リソース（スロット）の確保。maxConcurrency件実行中の場合はここでブロックして待機。
		semaphore <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					zap.L().Debug("レート制限の待機中に中断されました", zap.String("url", articles[idx].URL), zap.Error(err))
					return
				}
			}

			// 各 goroutine は自分の添字にのみ書き込む
			content := s.extractor.Extract(ctx, articles[idx].URL)
			articles[idx] = articles[idx].WithPreview(content)
		}(i)
	}

	wg.Wait()
	return articles
}
