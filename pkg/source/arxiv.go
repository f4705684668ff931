package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ikenna-e/ai-article-scraper/pkg/feed"
	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

const (
	// ArxivLabel は arXiv 由来の記事に付けるソース名です。
	ArxivLabel = "arXiv"
	// MaxArxivResults は1回の検索で arXiv に要求する件数の上限です。
	MaxArxivResults = 5
)

// Arxiv は、Atom 形式の学術論文検索 API を利用するアダプターです。
type Arxiv struct {
	parser   *feed.Parser
	template string
}

// NewArxiv は、検索URLテンプレートを指定して Arxiv アダプターを生成します。
func NewArxiv(parser *feed.Parser, template string) *Arxiv {
	return &Arxiv{parser: parser, template: template}
}

func (a *Arxiv) Name() string { return NameArxiv }

// Search は、タイトルと ID の両方を持つ entry のみをスタブとして返します。
// ID は論文の抄録ページURLで、そのまま記事URLとして扱います。
func (a *Arxiv) Search(ctx context.Context, keywords string, limit int) ([]types.ArticleStub, error) {
	if limit <= 0 {
		return []types.ArticleStub{}, nil
	}

	searchURL := buildSearchURL(a.template, keywords, limit)
	zap.L().Debug("arXiv を検索します", zap.String("url", searchURL))

	parsed, err := a.parser.FetchAndParseAtom(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrap(err, "arXiv の検索に失敗しました")
	}

	collectedAt := now()
	stubs := make([]types.ArticleStub, 0, min(limit, len(parsed.Entries)))
	for _, entry := range parsed.Entries {
		if len(stubs) >= limit {
			break
		}
		if entry == nil {
			continue
		}
		// 論文タイトルは改行を含むことが多いため正規化する
		title := types.CollapseSpace(entry.Title)
		id := strings.TrimSpace(entry.ID)
		if title == "" || id == "" {
			continue
		}
		stubs = append(stubs, types.NewStub(title, id, ArxivLabel, feed.PlainText(entry.Summary), collectedAt))
	}
	return stubs, nil
}
