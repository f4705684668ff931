package client

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultHTTPTimeout は、1リクエストあたりのデフォルトのタイムアウトです。
	DefaultHTTPTimeout = 30 * time.Second
	// DefaultConnectTimeout は、TCP接続確立のデフォルトのタイムアウトです。
	DefaultConnectTimeout = 10 * time.Second
	// DefaultMaxConnsPerHost は、ホストごとの最大同時接続数です。
	DefaultMaxConnsPerHost = 30
	// DefaultUserAgent は、サイトからのブロックを避けるためのUser-Agentです。
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Fetcher は、URLの生バイト配列を取得する機能のインターフェースです。
// アダプター、フィードパーサー、Extractor はこの抽象に依存します。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options は、セッションの接続設定です。ゼロ値の項目にはデフォルト値が使われます。
type Options struct {
	Timeout         time.Duration
	ConnectTimeout  time.Duration
	MaxConnsPerHost int
	UserAgent       string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultHTTPTimeout
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.MaxConnsPerHost <= 0 {
		o.MaxConnsPerHost = DefaultMaxConnsPerHost
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return o
}

// ----------------------------------------------------------------------
// セッション
// ----------------------------------------------------------------------

// Session は、1回の検索リクエストが専有するコネクションプールです。
// httpkit.Client を埋め込み、FetchBytes などのメソッドをそのまま公開します。
// リトライは行いません（各外部呼び出しは1回のみ）。
type Session struct {
	*httpkit.Client
	transport *http.Transport
}

// Open は、専用の Transport を持つ新しいセッションを作成します。
// 呼び出し側は処理の成否にかかわらず Close を呼ぶ必要があります。
func Open(opts Options) *Session {
	opts = opts.withDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: opts.ConnectTimeout,
		MaxConnsPerHost:     opts.MaxConnsPerHost,
		MaxIdleConnsPerHost: opts.MaxConnsPerHost,
	}

	doer := &userAgentDoer{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}

	return &Session{
		Client: httpkit.New(
			opts.Timeout,
			httpkit.WithHTTPClient(doer),
			httpkit.WithMaxRetries(0),
		),
		transport: transport,
	}
}

// Close は、セッションが保持するアイドル接続をすべて閉じます。
func (s *Session) Close() {
	if s == nil || s.transport == nil {
		return
	}
	s.transport.CloseIdleConnections()
}

// userAgentDoer は、すべてのリクエストに共通の User-Agent を設定します。
type userAgentDoer struct {
	client    Doer
	userAgent string
}

func (d *userAgentDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", d.userAgent)
	return d.client.Do(req)
}
