package sina

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/pkg/models"
)

// indexList is the s_ (simplified) quote list for the four major
// indices. The s_ variant carries name, price, change, change pct,
// volume in lots and amount in 万元.
const indexList = "s_sh000001,s_sz399001,s_sz399006,s_sh000688"

// hqLineRe matches one "var hq_str_s_sh000001="...";" assignment.
var hqLineRe = regexp.MustCompile(`var hq_str_s_(\w+)="([^"]*)"`)

type indexFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newIndexFetcher(baseURL string) *indexFetcher {
	return &indexFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelIndexQuote,
			"Major A-share index quotes from Sina",
			nil,
			10*time.Second,
			5, time.Second,
		),
		baseURL: baseURL,
	}
}

func (f *indexFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return provider.NewCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/rn=%d&list=%s", f.baseURL, time.Now().UnixMilli(), indexList)
	body, err := infra.GetBytesGBK(ctx, url, sinaHeaders())
	if err != nil {
		return nil, fmt.Errorf("sina index quotes: %w", err)
	}

	quotes, err := parseIndexQuotes(string(body))
	if err != nil {
		return nil, err
	}

	f.CacheSet(cacheKey, quotes)
	return provider.NewResult(quotes), nil
}

// parseIndexQuotes decodes the hq_str assignments into index quotes.
// Field layout of the s_ variant: 名称, 点位, 涨跌点, 涨跌幅(%),
// 成交量(手), 成交额(万元).
func parseIndexQuotes(body string) ([]models.IndexQuote, error) {
	matches := hqLineRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("sina index quotes: no hq_str lines in response")
	}

	quotes := make([]models.IndexQuote, 0, len(matches))
	for _, m := range matches {
		symbol, payload := m[1], m[2]
		fields := strings.Split(payload, ",")
		if len(fields) < 6 {
			continue
		}
		quotes = append(quotes, models.IndexQuote{
			Code:      strings.TrimLeft(symbol, "shz"),
			Name:      fields[0],
			Price:     parseFloat(fields[1]),
			Change:    parseFloat(fields[2]),
			ChangePct: parseFloat(fields[3]),
			Volume:    parseFloat(fields[4]) * 100,   // 手 to shares
			Amount:    parseFloat(fields[5]) * 10000, // 万元 to 元
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("sina index quotes: no parseable rows")
	}
	return quotes, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
