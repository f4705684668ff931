package types

import (
	"strings"
	"time"

	textUtils "github.com/shouni/go-utils/text"
)

const (
	// MaxDescriptionLength は、記事スタブの説明文の最大文字数です。
	MaxDescriptionLength = 200
	// MaxPreviewLength は、本文プレビューの最大文字数です（省略記号を除く）。
	MaxPreviewLength = 500
	// PreviewEllipsis は、プレビューを切り詰めた場合に付与する省略記号です。
	PreviewEllipsis = "..."
	// NoTitle は、ソースがタイトルを提供しない場合のプレースホルダーです。
	NoTitle = "No Title"
)

// ArticleStub は、ソースアダプターが生成する正規化済みの記事レコードです。
// URL が同一実行内での識別キーになります。
type ArticleStub struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// Article は、ArticleStub に本文プレビューを付与したものです。
// ContentPreview は抽出に成功した場合のみ設定されます。
type Article struct {
	ArticleStub
	ContentPreview *string `json:"content_preview,omitempty"`
}

// SourceResult は、1つのソースアダプターの実行結果、または実行中に発生したエラーを保持します。
// オーケストレーターの並列収集で、成功/失敗をタグ付けするために利用されます。
type SourceResult struct {
	Source string        // アダプター名
	Stubs  []ArticleStub // 取得できた記事スタブ
	Error  error         // 処理中に発生したエラー
}

// NewStub は、タイトルの補完と説明文の切り詰めを行ったうえで ArticleStub を生成します。
func NewStub(title, url, source, description string, collectedAt time.Time) ArticleStub {
	title = strings.TrimSpace(title)
	if title == "" {
		title = NoTitle
	}
	return ArticleStub{
		Title:       title,
		URL:         strings.TrimSpace(url),
		Source:      source,
		Timestamp:   collectedAt.UTC().Format(time.RFC3339),
		Description: Truncate(description, MaxDescriptionLength),
	}
}

// Promote は、スタブをプレビュー未設定の Article に変換します。
func (s ArticleStub) Promote() Article {
	return Article{ArticleStub: s}
}

// WithPreview は、抽出済み本文から境界付きのプレビューを設定した Article を返します。
// 本文が空の場合はプレビューを設定しません。
func (a Article) WithPreview(content string) Article {
	if content == "" {
		return a
	}
	preview := content
	if RuneLen(content) > MaxPreviewLength {
		preview = Truncate(content, MaxPreviewLength) + PreviewEllipsis
	}
	a.ContentPreview = &preview
	return a
}

// Truncate は、文字列を先頭から最大 limit 文字（rune 単位）に切り詰めます。
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// RuneLen は、文字列の文字数（rune 単位）を返します。
func RuneLen(s string) int {
	return len([]rune(s))
}

// CollapseSpace は、テキストを正規化し、連続する空白（改行を含む）を1つの半角スペースにまとめます。
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(textUtils.NormalizeText(s)), " ")
}
