package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// promptDescriptionLength は、プロンプトに含める説明文の最大文字数です。
const promptDescriptionLength = 150

// Completer は、1つのプロンプトに対してテキスト応答を返す言語モデルのクライアントです。
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClassifierRanker は、言語モデルに記事一覧を提示して関連する記事番号を選ばせる Ranker です。
type ClassifierRanker struct {
	completer Completer
}

func NewClassifierRanker(completer Completer) *ClassifierRanker {
	return &ClassifierRanker{completer: completer}
}

// Rank は、プロンプトを1回送信し、応答中の JSON 配列から記事の位置を取り出します。
func (c *ClassifierRanker) Rank(ctx context.Context, interests string, stubs []types.ArticleStub) ([]int, error) {
	response, err := c.completer.Complete(ctx, BuildPrompt(interests, stubs))
	if err != nil {
		return nil, eris.Wrap(err, "分類器の呼び出しに失敗しました")
	}
	zap.L().Debug("分類器の応答", zap.String("response", response))
	return ParseSelection(response, len(stubs))
}

// BuildPrompt は、記事を1始まりの番号付きで列挙した分類用プロンプトを組み立てます。
func BuildPrompt(interests string, stubs []types.ArticleStub) string {
	summaries := make([]string, 0, len(stubs))
	for i, stub := range stubs {
		summary := fmt.Sprintf("Article %d:\nTitle: %s\nSource: %s", i+1, stub.Title, stub.Source)
		if stub.Description != "" {
			summary += "\nDescription: " + types.Truncate(stub.Description, promptDescriptionLength)
		}
		summaries = append(summaries, summary)
	}

	var b strings.Builder
	b.WriteString("Filter these articles based on user interests.\n\n")
	b.WriteString("User Interests: " + interests + "\n\n")
	b.WriteString("Articles:\n")
	b.WriteString(strings.Join(summaries, "\n---\n"))
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("1. Evaluate each article's relevance to the user's stated interests\n")
	b.WriteString("2. Consider both the title and description/summary when available\n")
	b.WriteString("3. Be somewhat generous - include articles that are tangentially related\n")
	b.WriteString("4. Return ONLY a JSON array of article numbers (1-indexed) that are relevant\n\n")
	b.WriteString("Return format: [1, 3, 5] or [] if none are relevant\n\n")
	b.WriteString("Do not include any explanation, just the JSON array.")
	return b.String()
}

// ParseSelection は、応答テキスト中の最初の角括弧で囲まれた JSON 配列を読み取り、
// 1始まりの記事番号を0始まりの位置に変換して返します。
//
// 範囲外の番号、整数でない要素、重複した番号は読み飛ばします。有効な番号が1つもない場合は
// ErrNoSelection を返します。空配列 "[]" も同様に扱い、呼び出し側はキーワード照合に
// フォールバックします。入力が空でない限り、絞り込み結果は空になりません。
func ParseSelection(response string, count int) ([]int, error) {
	start := strings.Index(response, "[")
	if start < 0 {
		return nil, ErrNoSelection
	}
	end := strings.Index(response[start:], "]")
	if end < 0 {
		return nil, ErrNoSelection
	}
	raw := response[start : start+end+1]
	if !gjson.Valid(raw) {
		return nil, ErrNoSelection
	}

	seen := make(map[int]struct{})
	var indices []int
	for _, item := range gjson.Parse(raw).Array() {
		if item.Type != gjson.Number {
			continue
		}
		n := item.Int()
		if float64(n) != item.Float() || n <= 0 || n > int64(count) {
			continue
		}
		index := int(n) - 1
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}
		indices = append(indices, index)
	}

	if len(indices) == 0 {
		return nil, ErrNoSelection
	}
	return indices, nil
}
