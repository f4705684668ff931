package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ikenna-e/ai-article-scraper/pkg/aggregate"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// renderArticles は、検索結果を人が読みやすい形式で出力します。
func renderArticles(w io.Writer, articles []types.Article) {
	fmt.Fprintf(w, "--- 検索結果 (%d件) ---\n", len(articles))
	for i, a := range articles {
		fmt.Fprintf(w, "[%d] %s\n", i+1, a.Title)
		fmt.Fprintf(w, "    ソース: %s\n", a.Source)
		fmt.Fprintf(w, "    URL: %s\n", a.URL)
		if a.Description != "" {
			fmt.Fprintf(w, "    概要: %s\n", a.Description)
		}
		if a.ContentPreview != nil {
			fmt.Fprintf(w, "    本文: %s\n", *a.ContentPreview)
		}
	}
	fmt.Fprintln(w)
}

// renderStubs は、プレビューなしの記事スタブ一覧を出力します。
func renderStubs(w io.Writer, stubs []types.ArticleStub) {
	articles := make([]types.Article, 0, len(stubs))
	for _, s := range stubs {
		articles = append(articles, s.Promote())
	}
	renderArticles(w, articles)
}

// renderReport は、ソースごとの取得件数を出力します。
func renderReport(w io.Writer, report aggregate.Report) {
	fmt.Fprintf(w, "--- 実行レポート (request_id: %s) ---\n", report.RequestID)
	for _, s := range report.Sources {
		if s.Error != "" {
			fmt.Fprintf(w, "❌ %-12s 目安 %2d件 / 取得 %2d件 (%s)\n", s.Name, s.Budget, s.Count, s.Error)
			continue
		}
		fmt.Fprintf(w, "✅ %-12s 目安 %2d件 / 取得 %2d件\n", s.Name, s.Budget, s.Count)
	}
	fmt.Fprintf(w, "収集 %d件 → 重複除外後 %d件 → 絞り込み %d件 (%s) → 出力 %d件 (%s)\n",
		report.Collected, report.Unique, report.Filtered, report.Mode, report.Returned, report.Duration)
}

// searchOutput は --json 指定時の出力形式です。
type searchOutput struct {
	Articles []types.Article   `json:"articles"`
	Report   *aggregate.Report `json:"report,omitempty"`
}

// renderJSON は、検索結果をインデント付きJSONで出力します。
func renderJSON(w io.Writer, articles []types.Article, report aggregate.Report, withReport bool) error {
	out := searchOutput{Articles: articles}
	if out.Articles == nil {
		out.Articles = []types.Article{}
	}
	if withReport {
		out.Report = &report
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
