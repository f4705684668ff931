package cmd

import (
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/internal/config"
)

// --- グローバル定数 ---

const (
	appName = "article-scraper"

	// 全体処理のタイムアウトは、HTTPクライアントのタイムアウトに対するこの倍率で決める
	overallTimeoutFactor = 2
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int // --timeout タイムアウト（0 の場合は設定ファイルの値）
}

var Flags AppFlags              // アプリケーション固有フラグにアクセスするためのグローバル変数
var globalConfig *config.Config // PersistentPreRunE で読み込んだ設定

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.Short = "複数ソースから記事を集め、関心に沿って絞り込むツール"
	rootCmd.Long = `Hacker News、Reddit、arXiv、ニュースフィード、AllSides を並列に検索し（search）、
単一ページの本文抽出（extract）やフィードの解析（parse）も実行します。`

	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		0,
		"HTTPリクエストのタイムアウト時間（秒）。0 の場合は設定値を使用",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if Flags.TimeoutSec > 0 {
		cfg.HTTP.TimeoutSecs = Flags.TimeoutSec
	}

	if err := config.InitLogger(cfg.Log, clibase.Flags.Verbose); err != nil {
		return err
	}

	zap.L().Debug("設定を読み込みました",
		zap.Int("http_timeout_secs", cfg.HTTP.TimeoutSecs),
		zap.String("classifier", cfg.Classifier.Provider),
		zap.Bool("classifier_enabled", cfg.ClassifierEnabled()))

	globalConfig = cfg
	return nil
}

// overallTimeout は、1コマンド全体に許す時間を返します。
func overallTimeout(cfg *config.Config, factor int) time.Duration {
	return time.Duration(cfg.HTTP.TimeoutSecs*overallTimeoutFactor*factor) * time.Second
}

// --- エントリポイント ---

// Execute は、rootCmd を実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	defer func() { _ = zap.L().Sync() }()

	// clibase.Execute を使用して、アプリケーションの初期化、フラグ設定、サブコマンドの登録を一括で行う
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		searchCmd,
		extractCmd,
		parseCmd,
		sourcesCmd,
	)
}
