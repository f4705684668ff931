package aggregate

import (
	"time"

	"github.com/ikenna-e/ai-article-scraper/pkg/relevance"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// Report は、1回の検索の実行結果の要約です。
type Report struct {
	RequestID string         `json:"request_id"`
	Keywords  string         `json:"keywords"`
	Sources   []SourceReport `json:"sources"`
	Collected int            `json:"collected"`
	Unique    int            `json:"unique"`
	Filtered  int            `json:"filtered"`
	Mode      relevance.Mode `json:"mode"`
	Returned  int            `json:"returned"`
	Duration  time.Duration  `json:"duration"`
}

// SourceReport は、1つのソースの取得結果です。Error は失敗時のみ設定されます。
type SourceReport struct {
	Name   string `json:"name"`
	Budget int    `json:"budget"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

func sourceReports(results []types.SourceResult, numResults int) []SourceReport {
	reports := make([]SourceReport, 0, len(results))
	for _, res := range results {
		r := SourceReport{
			Name:   res.Source,
			Budget: Budget(res.Source, numResults),
			Count:  len(res.Stubs),
		}
		if res.Error != nil {
			r.Error = res.Error.Error()
		}
		reports = append(reports, r)
	}
	return reports
}
