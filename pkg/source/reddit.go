package source

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/client"
	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

const (
	redditLabelPrefix = "Reddit - r/"
	unknownCommunity  = "unknown"
)

// Reddit は、公開 JSON 検索エンドポイントを利用するアダプターです。
type Reddit struct {
	client   client.Fetcher
	template string
}

// NewReddit は、検索URLテンプレートを指定して Reddit アダプターを生成します。
func NewReddit(fetcher client.Fetcher, template string) *Reddit {
	return &Reddit{client: fetcher, template: template}
}

func (r *Reddit) Name() string { return NameReddit }

// Search は、新着順の検索結果からリンク先URLを持つ投稿のみをスタブに変換します。
func (r *Reddit) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	if limit <= 0 {
		return []types.ArticleStub{}, nil
	}

	searchURL := buildSearchURL(r.template, keywords, limit)
	zap.L().Debug("Reddit を検索します", zap.String("url", searchURL))

	body, err := r.client.FetchBytes(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrapf(err, "Reddit の検索結果の取得に失敗しました (URL: %s)", searchURL)
	}
	return parseRedditListing(body, limit)
}

// parseRedditListing は、data.children[].data の配列を走査してスタブを組み立てます。
func parseRedditListing(body []byte, limit int) ([]types.ArticleStub, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("Reddit の応答が JSON ではありません")
	}

	children := gjson.GetBytes(body, "data.children")
	if !children.IsArray() {
		return nil, eris.New("Reddit の応答に data.children がありません")
	}

	collectedAt := now()
	stubs := make([]types.ArticleStub, 0, limit)
	children.ForEach(func(_, child gjson.Result) bool {
		post := child.Get("data")
		link := post.Get("url").String()
		if link == "" {
			return true
		}

		community := post.Get("subreddit").String()
		if community == "" {
			community = unknownCommunity
		}

		stubs = append(stubs, types.NewStub(
			post.Get("title").String(),
			link,
			redditLabelPrefix+community,
			feed.PlainText(post.Get("selftext").String()),
			collectedAt,
		))
		return len(stubs) < limit
	})
	return stubs, nil
}
