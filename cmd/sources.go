package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ikenna-e/ai-article-scraper/internal/pipeline"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "検索に使うソース設定をYAMLで表示します",
	Long:  `組み込みのソース設定、または sources.file で指定されたファイルを反映した実際の設定を表示します。出力はそのまま sources.file として利用できます。`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := pipeline.LoadRegistry(globalConfig)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(registry)
	},
}
