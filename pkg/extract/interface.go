package extract

import (
	"context"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLドキュメントの生バイト配列を取得する機能のインターフェースを定義します。
// Extractor は、この抽象に依存します。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor は、URLから本文テキストを取り出す機能を表します。
// 取得または解析に失敗した場合は空文字列を返します。
type TextExtractor interface {
	Extract(ctx context.Context, url string) string
}
