package sina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/pkg/models"
)

const hqFixture = `var hq_str_s_sh000001="上证指数,3085.15,15.93,0.52,1256800,158965000";
var hq_str_s_sz399001="深证成指,9850.33,-30.12,-0.30,2256800,258965000";
var hq_str_s_sz399006="创业板指,1950.47,8.21,0.42,856800,98965000";
var hq_str_s_sh000688="科创50,880.12,2.05,0.23,156800,18965000";
`

// hqServer serves the fixture GBK-encoded, the way hq.sinajs.cn does.
func hqServer(t *testing.T) *httptest.Server {
	t.Helper()
	enc := simplifiedchinese.GBK.NewEncoder()
	body, err := enc.Bytes([]byte(hqFixture))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=GBK")
		w.Write(body)
	}))
}

func TestProviderInfo(t *testing.T) {
	p := New()
	if p.Info().Name != "sina" {
		t.Errorf("name = %q, want sina", p.Info().Name)
	}
	if len(p.SupportedModels()) != 1 || p.SupportedModels()[0] != provider.ModelIndexQuote {
		t.Errorf("supported models = %v, want [IndexQuote]", p.SupportedModels())
	}
}

func TestIndexFetch(t *testing.T) {
	srv := hqServer(t)
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	f := p.Fetcher(provider.ModelIndexQuote)
	if f == nil {
		t.Fatal("no IndexQuote fetcher registered")
	}

	res, err := f.Fetch(context.Background(), provider.QueryParams{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	quotes, ok := res.Data.([]models.IndexQuote)
	if !ok {
		t.Fatalf("data type = %T, want []models.IndexQuote", res.Data)
	}
	if len(quotes) != 4 {
		t.Fatalf("got %d quotes, want 4", len(quotes))
	}

	sh := quotes[0]
	if sh.Code != "000001" {
		t.Errorf("code = %q, want 000001", sh.Code)
	}
	if sh.Name != "上证指数" {
		t.Errorf("name = %q, want 上证指数 (GBK decode)", sh.Name)
	}
	if sh.Price != 3085.15 || sh.Change != 15.93 || sh.ChangePct != 0.52 {
		t.Errorf("quote = %+v, wrong price fields", sh)
	}
	if sh.Volume != 125680000 {
		t.Errorf("volume = %v, want lots converted to shares", sh.Volume)
	}
	if sh.Amount != 1589650000000 {
		t.Errorf("amount = %v, want 万元 converted to 元", sh.Amount)
	}

	if quotes[1].Code != "399001" || quotes[1].ChangePct != -0.30 {
		t.Errorf("second quote = %+v, want 深证成指 -0.30", quotes[1])
	}
}

func TestIndexFetchCached(t *testing.T) {
	calls := 0
	enc := simplifiedchinese.GBK.NewEncoder()
	body, _ := enc.Bytes([]byte(hqFixture))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(body)
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	f := p.Fetcher(provider.ModelIndexQuote)

	if _, err := f.Fetch(context.Background(), provider.QueryParams{}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	res, err := f.Fetch(context.Background(), provider.QueryParams{})
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !res.Cached {
		t.Error("second fetch should be served from cache")
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestIndexFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("// nothing here"))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL)
	f := p.Fetcher(provider.ModelIndexQuote)
	if _, err := f.Fetch(context.Background(), provider.QueryParams{}); err == nil {
		t.Fatal("expected error for body without hq_str lines")
	}
}

func TestPing(t *testing.T) {
	srv := hqServer(t)
	p := NewWithBaseURL(srv.URL)
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
	srv.Close()
	if err := p.Ping(context.Background()); err == nil {
		t.Error("expected ping error after server close")
	}
}
