package source

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// FeedScan は、一般ニュースのフィード一覧を順に巡回し、キーワードに一致する
// エントリーを集めるアダプターです。
//
// 件数が上限に達した時点で残りのフィードは取得しません。そのため上限が小さい場合は、
// 一覧の後方にあるフィードが結果に現れないことがあります。
type FeedScan struct {
	parser *feed.Parser
	feeds  []string
}

// NewFeedScan は、巡回対象のフィードURL一覧を指定して FeedScan アダプターを生成します。
func NewFeedScan(parser *feed.Parser, feeds []string) *FeedScan {
	return &FeedScan{parser: parser, feeds: slices.Clone(feeds)}
}

func (f *FeedScan) Name() string { return NameFeedScan }

// Search は、空白区切りのキーワードのいずれかをタイトルまたは説明文に含むエントリーを返します。
// 個々のフィードの失敗はログに記録して次のフィードへ進みます。
func (f *FeedScan) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	if limit <= 0 {
		return []types.ArticleStub{}, nil
	}

	tokens := strings.Fields(strings.ToLower(keywords))
	collectedAt := now()
	stubs := make([]types.ArticleStub, 0, limit)

	for _, feedURL := range f.feeds {
		if len(stubs) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		parsed, err := f.parser.FetchAndParse(ctx, feedURL)
		if err != nil {
			zap.L().Info("フィードの巡回をスキップします", zap.String("url", feedURL), zap.Error(err))
			continue
		}

		label := feed.SourceLabel(parsed)
		for _, item := range parsed.Items {
			if item == nil {
				continue
			}
			description := feed.PlainText(item.Description)
			if !containsAnyToken(tokens, item.Title, description) {
				continue
			}
			if stub, ok := feed.ItemStub(item, label, collectedAt); ok {
				stubs = append(stubs, stub)
			}
		}
	}

	if len(stubs) > limit {
		stubs = stubs[:limit]
	}
	return stubs, nil
}

// containsAnyToken は、いずれかのトークンが対象文字列のどれかに大文字小文字を区別せず含まれるかを判定します。
func containsAnyToken(tokens []string, fields ...string) bool {
	for i, field := range fields {
		fields[i] = strings.ToLower(field)
	}
	for _, token := range tokens {
		for _, field := range fields {
			if strings.Contains(field, token) {
				return true
			}
		}
	}
	return false
}
