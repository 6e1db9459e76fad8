package eastmoney

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/pkg/models"
)

// spotMarkets selects every A-share listing: SZ main board, SZ ChiNext,
// SH main board, SH STAR market, plus BSE.
const spotMarkets = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23,m:0+t:81+s:2048"

// spotFields requests the 16 quote columns:
// f2 最新价 f3 涨跌幅 f4 涨跌额 f5 成交量 f6 成交额 f8 换手率 f9 市盈率
// f12 代码 f14 名称 f15 最高 f16 最低 f17 今开 f18 昨收 f20 总市值
// f21 流通市值 f23 市净率
const spotFields = "f2,f3,f4,f5,f6,f8,f9,f12,f14,f15,f16,f17,f18,f20,f21,f23"

const spotPageSize = 500

type spotFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newSpotFetcher(baseURL string) *spotFetcher {
	return &spotFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelSpotSnapshot,
			"Full A-share real-time snapshot from Eastmoney push2",
			nil,
			10*time.Second, 5, time.Second,
		),
		baseURL: baseURL,
	}
}

func (f *spotFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), nil)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return provider.NewCachedResult(cached), nil
	}

	var all []models.Quote
	page := 1
	for {
		if err := f.RateLimit(ctx); err != nil {
			return nil, err
		}
		url := fmt.Sprintf("%s/api/qt/clist/get?pn=%d&pz=%d&po=1&np=1&fltt=2&invt=2&fid=f3&fs=%s&fields=%s",
			f.baseURL, page, spotPageSize, spotMarkets, spotFields)
		body, err := infra.GetBytes(ctx, url, eastmoneyHeaders())
		if err != nil {
			return nil, fmt.Errorf("eastmoney spot page %d: %w", page, err)
		}

		total, count, err := parseSpotPage(body, &all)
		if err != nil {
			return nil, fmt.Errorf("eastmoney spot page %d: %w", page, err)
		}
		if count == 0 || len(all) >= total || count < spotPageSize {
			break
		}
		page++
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("eastmoney spot: empty snapshot")
	}

	f.CacheSet(cacheKey, all)
	return provider.NewResult(all), nil
}

// parseSpotPage appends one clist page's data.diff rows to list and
// returns data.total and the number of rows appended. Non-numeric
// values ("-" for suspended instruments) coerce to 0.
func parseSpotPage(body []byte, list *[]models.Quote) (total, count int, err error) {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return 0, 0, fmt.Errorf("no data object in response")
	}
	total = int(data.Get("total").Int())

	diff := data.Get("diff")
	if !diff.Exists() || !diff.IsArray() {
		return total, 0, nil
	}
	for _, v := range diff.Array() {
		code := v.Get("f12").String()
		if code == "" {
			continue
		}
		*list = append(*list, models.Quote{
			Code:           code,
			Name:           v.Get("f14").String(),
			Price:          v.Get("f2").Float(),
			ChangePct:      v.Get("f3").Float(),
			Change:         v.Get("f4").Float(),
			Volume:         v.Get("f5").Float(),
			Amount:         v.Get("f6").Float(),
			TurnoverRate:   v.Get("f8").Float(),
			PE:             v.Get("f9").Float(),
			High:           v.Get("f15").Float(),
			Low:            v.Get("f16").Float(),
			Open:           v.Get("f17").Float(),
			PrevClose:      v.Get("f18").Float(),
			TotalMarketCap: v.Get("f20").Float(),
			FloatMarketCap: v.Get("f21").Float(),
			PB:             v.Get("f23").Float(),
		})
		count++
	}
	return total, count, nil
}
