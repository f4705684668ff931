// Package pipeline は、設定から各コンポーネントを組み立てて実行可能な処理にします。
package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/internal/config"
	"github.com/ikenna-e/ai-article-scraper/pkg/aggregate"
	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/relevance"
	"github.com/ikenna-e/ai-article-scraper/pkg/scraper"
	"github.com/ikenna-e/ai-article-scraper/pkg/source"
)

// NewAggregator は、設定に従って Aggregator とその依存関係を組み立てます。
func NewAggregator(cfg *config.Config) (*aggregate.Aggregator, error) {
	registry, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var classifier relevance.Ranker
	if completer := NewCompleter(cfg); completer != nil {
		classifier = relevance.NewClassifierRanker(completer)
	}

	return aggregate.New(aggregate.Dependencies{
		OpenSession: func() aggregate.Session {
			return client.Open(cfg.SessionOptions())
		},
		Adapters: func(fetcher client.Fetcher) []source.Adapter {
			return source.NewAdapters(registry, fetcher)
		},
		Filter: relevance.NewFilter(classifier),
		Enricher: func(fetcher client.Fetcher) (scraper.Enricher, error) {
			extractor, err := newExtractor(cfg, fetcher)
			if err != nil {
				return nil, err
			}
			return scraper.NewParallelScraper(extractor,
				scraper.WithConcurrency(cfg.Extract.Concurrency),
				scraper.WithRateLimit(cfg.Extract.RatePerSec),
				scraper.WithMaxEnriched(cfg.Extract.PreviewCount),
			), nil
		},
	})
}

// NewCompleter は、設定された分類器のクライアントを返します。無効な場合は nil を返します。
func NewCompleter(cfg *config.Config) relevance.Completer {
	if !cfg.ClassifierEnabled() {
		zap.L().Info("分類器が設定されていないため、キーワード照合で絞り込みます")
		return nil
	}

	c := cfg.Classifier
	switch c.Provider {
	case config.ProviderOpenAI:
		return relevance.NewOpenAICompleter(c.APIKey, c.BaseURL, c.Model, c.MaxTokens)
	default:
		return relevance.NewAnthropicCompleter(c.APIKey, c.BaseURL, c.Model, c.MaxTokens)
	}
}

// LoadRegistry は、設定ファイルが指定されていればそれを、なければ組み込みのソース設定を返します。
func LoadRegistry(cfg *config.Config) (source.Registry, error) {
	if cfg.Sources.File == "" {
		return source.DefaultRegistry(), nil
	}
	registry, err := source.LoadRegistry(cfg.Sources.File)
	if err != nil {
		return source.Registry{}, eris.Wrap(err, "ソース設定の読み込みに失敗しました")
	}
	return registry, nil
}
