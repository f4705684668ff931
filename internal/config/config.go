// Package config は、設定ファイルと環境変数からアプリケーション設定を読み込みます。
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
)

// EnvPrefix は、設定を上書きする環境変数の接頭辞です（例: ARTICLE_SCRAPER_LOG_LEVEL）。
const EnvPrefix = "ARTICLE_SCRAPER"

// 分類器のプロバイダー
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

// Config はアプリケーション設定全体です。
type Config struct {
	HTTP       HTTPConfig       `yaml:"http" mapstructure:"http"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// HTTPConfig は、検索ごとに確保する HTTP セッションの設定です。
type HTTPConfig struct {
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout_secs" mapstructure:"connect_timeout_secs"`
	MaxConnsPerHost    int    `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	UserAgent          string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ExtractConfig は本文抽出の設定です。
type ExtractConfig struct {
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PreviewCount int     `yaml:"preview_count" mapstructure:"preview_count"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ClassifierConfig は関連度判定に使う言語モデルの設定です。
type ClassifierConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
}

// SourcesConfig はソース設定ファイルの場所です。空の場合は組み込みの設定を使います。
type SourcesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load は、カレントディレクトリの config.yaml（任意）と環境変数から設定を読み込みます。
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("http.timeout_secs", int(client.DefaultHTTPTimeout/time.Second))
	v.SetDefault("http.connect_timeout_secs", int(client.DefaultConnectTimeout/time.Second))
	v.SetDefault("http.max_conns_per_host", client.DefaultMaxConnsPerHost)
	v.SetDefault("http.user_agent", client.DefaultUserAgent)
	v.SetDefault("extract.timeout_secs", 15)
	v.SetDefault("extract.preview_count", 10)
	v.SetDefault("extract.concurrency", 1)
	v.SetDefault("extract.rate_per_sec", 0)
	v.SetDefault("classifier.provider", ProviderAnthropic)
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.max_tokens", 500)
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("sources.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	cfg.Classifier.Provider = strings.ToLower(strings.TrimSpace(cfg.Classifier.Provider))
	if cfg.Classifier.APIKey == "" {
		cfg.Classifier.APIKey = providerAPIKey(cfg.Classifier.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を検証します。
func (c *Config) Validate() error {
	switch c.Classifier.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderNone:
	default:
		return eris.Errorf("config: 未対応の classifier.provider です: %q", c.Classifier.Provider)
	}
	if c.Classifier.MaxTokens <= 0 {
		return eris.New("config: classifier.max_tokens は1以上を指定してください")
	}
	if c.Extract.PreviewCount < 0 {
		return eris.New("config: extract.preview_count は0以上を指定してください")
	}
	return nil
}

// ClassifierEnabled は、言語モデルによる分類が利用可能かを返します。
func (c *Config) ClassifierEnabled() bool {
	return c.Classifier.Provider != ProviderNone && c.Classifier.APIKey != ""
}

// SessionOptions は HTTP 設定を client.Options に変換します。
func (c *Config) SessionOptions() client.Options {
	return client.Options{
		Timeout:         time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		ConnectTimeout:  time.Duration(c.HTTP.ConnectTimeoutSecs) * time.Second,
		MaxConnsPerHost: c.HTTP.MaxConnsPerHost,
		UserAgent:       c.HTTP.UserAgent,
	}
}

// providerAPIKey は、各 SDK の慣習的な環境変数から API キーを取得します。
func providerAPIKey(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}

// InitLogger initializes the global zap logger.
// verbose が true の場合は設定に関わらず debug レベルで出力します。
func InitLogger(cfg LogConfig, verbose bool) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
