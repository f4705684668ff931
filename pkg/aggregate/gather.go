package aggregate

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ikenna-e/ai-article-scraper/pkg/source"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// gather は全アダプターを並列に実行し、すべての完了を待って呼び出し順の結果を返します。
// 失敗またはパニックしたアダプターは、エラー付きの空の結果になります。
func gather(ctx context.Context, logger *zap.Logger, adapters []source.Adapter, keywords string, numResults int) []types.SourceResult {
	results := make([]types.SourceResult, len(adapters))

	// 兄弟タスクを中断させないため、WithContext は使わない
	var g errgroup.Group
	for i, adapter := range adapters {
		g.Go(func() error {
			results[i] = runAdapter(ctx, adapter, keywords, Budget(adapter.Name(), numResults))
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Error != nil {
			logger.Info("ソースの検索に失敗したため0件として扱います",
				zap.String("source", res.Source),
				zap.Error(res.Error))
			continue
		}
		logger.Debug("ソースの検索が完了しました",
			zap.String("source", res.Source),
			zap.Int("count", len(res.Stubs)))
	}
	return results
}

func runAdapter(ctx context.Context, adapter source.Adapter, keywords string, limit int) (res types.SourceResult) {
	res.Source = adapter.Name()
	defer func() {
		if r := recover(); r != nil {
			res.Stubs = nil
			res.Error = eris.New(fmt.Sprintf("アダプターでパニックが発生しました: %v", r))
		}
	}()

	// limit はアダプターへの目安であり、ここでは切り詰めない
	res.Stubs, res.Error = adapter.Search(ctx, keywords, limit)
	if res.Error != nil {
		res.Stubs = nil
	}
	return res
}
