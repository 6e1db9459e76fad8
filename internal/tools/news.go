package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/pkg/models"
)

// NewsSource is one configured financial news RSS feed.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the Chinese financial news feeds polled by
// the news tool.
var DefaultNewsSources = []NewsSource{
	{Name: "华尔街见闻", RSSURL: "https://dedicated.wallstreetcn.com/rss.xml"},
	{Name: "FT中文网", RSSURL: "https://www.ftchinese.com/rss/news"},
	{Name: "新浪财经", RSSURL: "https://rss.sina.com.cn/roll/finance/hot_roll.xml"},
}

const defaultNewsLimit = 10

// NewsService fetches market headlines from the configured RSS feeds.
type NewsService struct {
	sources []NewsSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewNewsService creates a news service with the default sources.
func NewNewsService() *NewsService {
	return NewNewsServiceWithSources(DefaultNewsSources)
}

// NewNewsServiceWithSources creates a news service with custom sources.
func NewNewsServiceWithSources(sources []NewsSource) *NewsService {
	return &NewsService{
		sources: sources,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// RegisterTools registers the news tool on a tool registry.
func (n *NewsService) RegisterTools(reg *Registry) {
	reg.RegisterFunc("get_market_news",
		"获取财经市场最新新闻，可选参数 limit 控制返回条数（默认10条），返回 JSON 格式的新闻列表",
		ObjectSchema("news arguments", map[string]*JSONSchema{
			"limit": IntProp("返回的新闻条数，默认 10"),
		}),
		func(ctx context.Context, args json.RawMessage) (string, error) {
			limit := defaultNewsLimit
			if len(args) > 0 {
				var in struct {
					Limit int `json:"limit"`
				}
				if err := json.Unmarshal(args, &in); err == nil && in.Limit > 0 {
					limit = in.Limit
				}
			}
			articles, err := n.MarketNews(ctx, limit)
			if err != nil {
				return "", err
			}
			return encodeJSON(map[string]any{
				"新闻": articles,
				"数量": len(articles),
			})
		})
}

// newsItem pairs an article with its parsed timestamp for sorting.
type newsItem struct {
	article models.NewsArticle
	at      time.Time
}

// MarketNews returns up to limit recent headlines across all sources,
// newest first. Sources that fail are skipped.
func (n *NewsService) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var items []newsItem
	for _, src := range n.sources {
		fetched, err := n.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		items = append(items, fetched...)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("news: all %d sources failed", len(n.sources))
	}

	sortNewsByDate(items)

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	articles := make([]models.NewsArticle, len(items))
	for i, it := range items {
		articles[i] = it.article
	}

	n.cache.Set(cacheKey, articles)
	return articles, nil
}

// fetchRSS parses one RSS feed into news items.
func (n *NewsService) fetchRSS(ctx context.Context, src NewsSource) ([]newsItem, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	items := make([]newsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		it := newsItem{article: models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}}
		if item.PublishedParsed != nil {
			it.at = *item.PublishedParsed
			it.article.PublishedAt = it.at.Format(time.RFC3339)
		}
		items = append(items, it)
	}
	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortNewsByDate sorts items newest first. Insertion sort is fine for
// the small slices involved.
func sortNewsByDate(items []newsItem) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].at.Before(key.at) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
