package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>测试财经</title>
<item>
  <title>A股三大指数收涨</title>
  <link>https://example.com/a</link>
  <description>&lt;p&gt;沪指涨0.5%，&lt;b&gt;成交额&lt;/b&gt;放大。&lt;/p&gt;</description>
  <pubDate>Mon, 02 Jun 2025 08:00:00 GMT</pubDate>
</item>
<item>
  <title>央行公开市场操作</title>
  <link>https://example.com/b</link>
  <description>逆回购操作 2000 亿元</description>
  <pubDate>Mon, 02 Jun 2025 09:30:00 GMT</pubDate>
</item>
</channel>
</rss>`

func rssServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
}

func TestMarketNews(t *testing.T) {
	srv := rssServer()
	defer srv.Close()

	svc := NewNewsServiceWithSources([]NewsSource{{Name: "测试财经", RSSURL: srv.URL}})
	articles, err := svc.MarketNews(context.Background(), 10)
	if err != nil {
		t.Fatalf("MarketNews: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}

	// Newest first.
	if articles[0].Title != "央行公开市场操作" {
		t.Errorf("first article = %q, want newest", articles[0].Title)
	}
	if articles[0].Source != "测试财经" {
		t.Errorf("source = %q", articles[0].Source)
	}

	// HTML stripped from the summary.
	if articles[1].Summary != "沪指涨0.5%，成交额放大。" {
		t.Errorf("summary = %q, want tags stripped", articles[1].Summary)
	}
	if articles[1].PublishedAt == "" {
		t.Error("published date should be set")
	}
}

func TestMarketNewsLimit(t *testing.T) {
	srv := rssServer()
	defer srv.Close()

	svc := NewNewsServiceWithSources([]NewsSource{{Name: "测试财经", RSSURL: srv.URL}})
	articles, err := svc.MarketNews(context.Background(), 1)
	if err != nil {
		t.Fatalf("MarketNews: %v", err)
	}
	if len(articles) != 1 {
		t.Errorf("got %d articles, want 1", len(articles))
	}
}

func TestMarketNewsAllSourcesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	svc := NewNewsServiceWithSources([]NewsSource{{Name: "坏源", RSSURL: srv.URL}})
	if _, err := svc.MarketNews(context.Background(), 10); err == nil {
		t.Fatal("expected error when every source fails")
	}
}

func TestNewsTool(t *testing.T) {
	srv := rssServer()
	defer srv.Close()

	svc := NewNewsServiceWithSources([]NewsSource{{Name: "测试财经", RSSURL: srv.URL}})
	reg := NewRegistry()
	svc.RegisterTools(reg)

	out, err := reg.Execute(context.Background(), "get_market_news", json.RawMessage(`{"limit": 1}`))
	if err != nil {
		t.Fatalf("execute get_market_news: %v", err)
	}

	var result struct {
		Articles []map[string]any `json:"新闻"`
		Count    int              `json:"数量"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if result.Count != 1 || len(result.Articles) != 1 {
		t.Errorf("count = %d, articles = %d, want 1", result.Count, len(result.Articles))
	}
}
