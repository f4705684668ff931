package cmd

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ikenna-e/ai-article-scraper/internal/pipeline"
)

// コマンドラインフラグ変数を定義
var (
	searchKeywords  string
	searchInterests string
	searchNum       int
	searchJSON      bool
	searchReport    bool
)

// searchTimeoutFactor は、並列検索・絞り込み・逐次の本文取得をまとめて覆うための倍率です。
const searchTimeoutFactor = 3

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "全ソースをキーワード検索し、関心に沿って絞り込んだ記事を表示します",
	Long: `Hacker News、Reddit、arXiv、ニュースフィード、AllSides を並列に検索し、
URLで重複を除いたうえで関心（--interests）に沿って絞り込み、上位記事に本文プレビューを付けて表示します。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		agg, err := pipeline.NewAggregator(globalConfig)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), overallTimeout(globalConfig, searchTimeoutFactor))
		defer cancel()

		articles, report, err := agg.SearchWithReport(ctx, searchKeywords, searchInterests, searchNum)
		if err != nil {
			return eris.Wrap(err, "記事検索の実行エラー")
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			return renderJSON(out, articles, report, searchReport)
		}
		renderArticles(out, articles)
		if searchReport {
			renderReport(out, report)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchKeywords, "keywords", "k", "", "検索キーワード（必須）")
	searchCmd.Flags().StringVarP(&searchInterests, "interests", "i", "", "関心のあるトピック（自由記述、省略可）")
	searchCmd.Flags().IntVarP(&searchNum, "num", "n", 20, "最大取得件数（推奨 5〜50）")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "結果をJSONで出力する")
	searchCmd.Flags().BoolVar(&searchReport, "report", false, "ソースごとの取得件数も出力する")

	_ = searchCmd.MarkFlagRequired("keywords")
}
