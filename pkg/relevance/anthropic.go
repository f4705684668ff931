package relevance

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// DefaultAnthropicModel は、分類に使う既定のモデルです。
const DefaultAnthropicModel = string(sdk.ModelClaudeHaiku4_5)

// AnthropicCompleter は Anthropic Messages API を使う Completer です。
type AnthropicCompleter struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter は、APIキーとモデルを指定して AnthropicCompleter を生成します。
// baseURL が空の場合は SDK の既定エンドポイントを使います。
func NewAnthropicCompleter(apiKey, baseURL, model string, maxTokens int64) *AnthropicCompleter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicCompleter{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
