package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/internal/pipeline"
)

var rawURL string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "指定されたURLまたは標準入力から記事本文のテキストを取得します",
	Long:  `指定されたURLのページからナビゲーションや広告などを除いた本文テキストを抽出します。URLを省略した場合は標準入力から読み込みます。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 処理対象URLの決定 (フラグ優先)
		urlToProcess := rawURL
		if urlToProcess == "" {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(cmd.ErrOrStderr(), "処理するURLを入力してください: ")

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return eris.Wrap(err, "標準入力の読み取りエラー")
				}
				return eris.New("URLが入力されていません")
			}
			urlToProcess = scanner.Text()
		}

		// 2. URLのスキーム補完とバリデーション
		processedURL, err := ensureScheme(urlToProcess)
		if err != nil {
			return err
		}

		timeout := overallTimeout(globalConfig, 1)
		zap.L().Info("本文を抽出します", zap.String("url", processedURL), zap.Duration("timeout", timeout))

		// 3. 全体処理のコンテキストを設定
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		// 4. メインロジックの実行
		text, err := pipeline.ExtractURLContent(ctx, globalConfig, processedURL)
		if err != nil {
			return eris.Wrapf(err, "コンテンツ抽出パイプラインの実行エラー (URL: %s)", processedURL)
		}

		// 5. 結果の出力
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "--- 抽出された本文 ---")
		fmt.Fprintln(out, text)
		fmt.Fprintln(out, "-----------------------")
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&rawURL, "url", "u", "", "抽出対象のURL")
}
