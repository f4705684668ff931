package aggregate

import (
	"github.com/ikenna-e/ai-article-scraper/pkg/source"
)

// Budget は、要求件数からアダプターごとの取得件数の目安を算出します。
// 目安はアダプターごとに独立しており、合計が要求件数と一致する保証はありません。
func Budget(adapterName string, numResults int) int {
	quarter := numResults / 4
	switch adapterName {
	case source.NameArxiv:
		return min(source.MaxArxivResults, quarter)
	case source.NameFeedScan:
		return numResults / 2
	default:
		return quarter
	}
}
