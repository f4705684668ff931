package extract

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/ikenna-e/ai-article-scraper/pkg/types"
)

// ErrNoContent は、ページから本文テキストを1文字も取り出せなかったことを示します。
var ErrNoContent = eris.New("webページから何も抽出できませんでした")

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	// DefaultTimeout は、1ページの取得にかける時間の上限です。
	DefaultTimeout = 15 * time.Second
	// MaxContentLength は、抽出テキストの最大文字数です。
	MaxContentLength = 5000
	// MinRegionLength を超えるテキストを持つ領域のみを本文候補として採用します。
	MinRegionLength = 200

	noiseSelectors = "script, style, noscript, template, nav, header, footer, aside, iframe, " +
		"input, select, button, textarea, " +
		".sidebar, .advertisement, .ad-banner, .ads, .related-posts, .social-share, .comments"
)

// contentSelectors は本文領域の候補です。先頭ほど優先されます。
var contentSelectors = []string{
	"article",
	"[role='main']",
	".post-content",
	".article-content",
	".content",
	".entry-content",
	".post-body",
	"main",
	".story-body",
	"#content",
}

// Extractor は、Fetcher を使ってコンテンツ抽出プロセスを管理します。
type Extractor struct {
	fetcher Fetcher
	timeout time.Duration
}

// Option は Extractor の設定を変更します。
type Option func(*Extractor)

// WithTimeout は、1ページあたりの取得タイムアウトを設定します。0以下の値は無視されます。
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, eris.New("extract.NewExtractor: Fetcher cannot be nil")
	}
	e := &Extractor{
		fetcher: fetcher,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// Extract は ExtractText の結果を返します。失敗時は空文字列を返し、エラーはログに記録します。
func (e *Extractor) Extract(ctx context.Context, url string) string {
	text, err := e.ExtractText(ctx, url)
	if err != nil {
		zap.L().Debug("本文の抽出に失敗しました", zap.String("url", url), zap.Error(err))
		return ""
	}
	return text
}

// ExtractText は指定されたURLからHTMLを取得し、ノイズを除去した本文テキストを返します。
func (e *Extractor) ExtractText(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return "", eris.Wrapf(err, "ページの取得に失敗しました (URL: %s)", url)
	}

	// 2. 文字コードを判定してUTF-8の goquery.Document に変換 (解析の責務)
	doc, err := parseDocument(htmlBytes)
	if err != nil {
		return "", eris.Wrapf(err, "HTML解析に失敗しました (URL: %s)", url)
	}

	return ExtractFromDocument(doc)
}

// ExtractFromDocument は goquery.Document から本文テキストを抽出します。
// 渡されたドキュメントからはノイズ要素が除去されます。
func ExtractFromDocument(doc *goquery.Document) (string, error) {
	// 1. ノイズ要素の除去
	doc.Find(noiseSelectors).Remove()

	// 2. 本文領域の特定
	region := findContentRegion(doc)

	// 3. テキストノードを空白区切りで連結し、空白を正規化して切り詰める
	text := types.CollapseSpace(collectText(region))
	if text == "" {
		return "", ErrNoContent
	}
	return types.Truncate(text, MaxContentLength), nil
}

// findContentRegion は、候補セレクターを優先順に試し、十分な長さのテキストを持つ最初の領域を返します。
// 該当がなければページ全体の body を返します。
func findContentRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}
		if types.RuneLen(types.CollapseSpace(collectText(candidate))) > MinRegionLength {
			return candidate
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return doc.Selection
	}
	return body
}

// collectText は、選択範囲内の全テキストノードを出現順に空白区切りで連結します。
func collectText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if data := strings.TrimSpace(n.Data); data != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}

// parseDocument は、meta 要素や BOM から文字コードを判定し、UTF-8 に変換してからパースします。
func parseDocument(body []byte) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), "")
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(reader)
}
