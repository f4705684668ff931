package source

import (
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	keywordsPlaceholder = "{keywords}"
	limitPlaceholder    = "{limit}"
)

// Registry は、各ソースの検索URLテンプレートと巡回対象フィードの一覧です。
// プロセス全体で共有される静的設定で、アダプター生成時に値として渡されます。
type Registry struct {
	HackerNewsSearchURL string   `yaml:"hacker_news_search_url"`
	RedditSearchURL     string   `yaml:"reddit_search_url"`
	ArxivSearchURL      string   `yaml:"arxiv_search_url"`
	AllSidesSearchURL   string   `yaml:"allsides_search_url"`
	NewsFeeds           []string `yaml:"news_feeds"`
}

// DefaultRegistry は、組み込みのソース設定を返します。
// NewsFeeds の順序は一括フィード巡回の優先順位を兼ねます。
func DefaultRegistry() Registry {
	return Registry{
		HackerNewsSearchURL: "https://hnrss.org/newest?q={keywords}",
		RedditSearchURL:     "https://www.reddit.com/search.json?q={keywords}&sort=new&limit={limit}",
		ArxivSearchURL:      "http://export.arxiv.org/api/query?search_query=all:{keywords}&start=0&max_results={limit}&sortBy=submittedDate&sortOrder=descending",
		AllSidesSearchURL:   "https://www.allsides.com/search/node/{keywords}",
		NewsFeeds: []string{
			"https://feeds.bbci.co.uk/news/technology/rss.xml",
			"https://rss.cnn.com/rss/edition.rss",
			"https://feeds.reuters.com/reuters/technologyNews",
			"https://www.wired.com/feed/rss",
			"https://techcrunch.com/feed/",
			"https://www.theverge.com/rss/index.xml",
			"https://arstechnica.com/feed/",
			"https://www.engadget.com/rss.xml",
		},
	}
}

// LoadRegistry は、YAMLファイルの内容で組み込み設定を上書きした Registry を返します。
// ファイルに存在しない項目は組み込みの値が維持されます。
func LoadRegistry(path string) (Registry, error) {
	reg := DefaultRegistry()

	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, eris.Wrapf(err, "ソース設定ファイルの読み込みに失敗しました (path: %s)", path)
	}
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return Registry{}, eris.Wrapf(err, "ソース設定ファイルのパースに失敗しました (path: %s)", path)
	}
	if err := reg.Validate(); err != nil {
		return Registry{}, err
	}
	return reg.Clone(), nil
}

// Validate は、各テンプレートにキーワードのプレースホルダーが含まれているかを検証します。
func (r Registry) Validate() error {
	templates := map[string]string{
		"hacker_news_search_url": r.HackerNewsSearchURL,
		"reddit_search_url":      r.RedditSearchURL,
		"arxiv_search_url":       r.ArxivSearchURL,
		"allsides_search_url":    r.AllSidesSearchURL,
	}
	for name, tmpl := range templates {
		if !strings.Contains(tmpl, keywordsPlaceholder) {
			return eris.Errorf("%s に %s が含まれていません: %q", name, keywordsPlaceholder, tmpl)
		}
	}
	return nil
}

// Clone は、フィード一覧を複製した Registry を返します。
func (r Registry) Clone() Registry {
	r.NewsFeeds = slices.Clone(r.NewsFeeds)
	return r
}

// buildSearchURL は、テンプレートにURLエンコード済みのキーワードと件数を埋め込みます。
func buildSearchURL(tmpl, keywords string, limit int) string {
	return strings.NewReplacer(
		keywordsPlaceholder, url.QueryEscape(keywords),
		limitPlaceholder, strconv.Itoa(limit),
	).Replace(tmpl)
}
