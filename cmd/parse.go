package cmd

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/internal/pipeline"
)

// フィードURLと表示件数を保持するフラグ変数
var (
	feedURL   string
	feedLimit int
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "RSS/Atomフィードを取得・解析し、正規化した記事を一覧表示します",
	Long:  `指定されたURLからRSSまたはAtomフィードを取得し、検索結果と同じ形式（タイトル、URL、ソース、説明文）に正規化して表示します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		processedURL, err := ensureScheme(feedURL)
		if err != nil {
			return err
		}

		timeout := overallTimeout(globalConfig, 1)
		zap.L().Info("フィードを解析します", zap.String("url", processedURL), zap.Duration("timeout", timeout))

		// 1. 全体処理のコンテキストを設定
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		// 2. メインロジックの実行
		label, stubs, err := pipeline.ParseFeedStubs(ctx, globalConfig, processedURL, feedLimit)
		if err != nil {
			return eris.Wrap(err, "フィード解析パイプラインの実行エラー")
		}

		// 3. 結果の出力
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "--- フィード解析結果 ---\n")
		fmt.Fprintf(out, "フィードタイトル: %s\n", label)
		fmt.Fprintf(out, "表示記事数: %d\n", len(stubs))
		fmt.Fprintln(out, "-----------------------")
		renderStubs(out, stubs)
		return nil
	},
}

func init() {
	// サブコマンド固有のフラグ定義
	parseCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	parseCmd.Flags().IntVarP(&feedLimit, "num", "n", 20, "表示する最大記事数")

	// URLフラグを必須にする
	_ = parseCmd.MarkFlagRequired("url")
}
