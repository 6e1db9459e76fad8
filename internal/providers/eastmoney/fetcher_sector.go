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

// sectorMarkets selects the industry boards (行业板块).
const sectorMarkets = "m:90+t:2+f:!50"

// sectorFields: f2 最新价 f3 涨跌幅 f4 涨跌额 f5 成交量 f6 成交额
// f12 板块代码 f14 板块名称 f104 上涨家数 f105 下跌家数
const sectorFields = "f2,f3,f4,f5,f6,f12,f14,f104,f105"

// All industry boards fit in one page.
const sectorPageSize = 200

type sectorFetcher struct {
	provider.BaseFetcher
	baseURL string
}

func newSectorFetcher(baseURL string) *sectorFetcher {
	return &sectorFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelSectorSnapshot,
			"Industry sector snapshot from Eastmoney push2",
			nil,
			30*time.Second, 5, time.Second,
		),
		baseURL: baseURL,
	}
}

func (f *sectorFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), nil)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return provider.NewCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/qt/clist/get?pn=1&pz=%d&po=1&np=1&fltt=2&invt=2&fid=f3&fs=%s&fields=%s",
		f.baseURL, sectorPageSize, sectorMarkets, sectorFields)
	body, err := infra.GetBytes(ctx, url, eastmoneyHeaders())
	if err != nil {
		return nil, fmt.Errorf("eastmoney sectors: %w", err)
	}

	sectors, err := parseSectors(body)
	if err != nil {
		return nil, fmt.Errorf("eastmoney sectors: %w", err)
	}

	f.CacheSet(cacheKey, sectors)
	return provider.NewResult(sectors), nil
}

func parseSectors(body []byte) ([]models.Sector, error) {
	diff := gjson.GetBytes(body, "data.diff")
	if !diff.Exists() || !diff.IsArray() {
		return nil, fmt.Errorf("no data.diff in response")
	}

	arr := diff.Array()
	sectors := make([]models.Sector, 0, len(arr))
	for _, v := range arr {
		name := v.Get("f14").String()
		if name == "" {
			continue
		}
		sectors = append(sectors, models.Sector{
			Name:         name,
			Price:        v.Get("f2").Float(),
			ChangePct:    v.Get("f3").Float(),
			Change:       v.Get("f4").Float(),
			Volume:       v.Get("f5").Float(),
			Amount:       v.Get("f6").Float(),
			AdvanceCount: int(v.Get("f104").Int()),
			DeclineCount: int(v.Get("f105").Int()),
		})
	}
	if len(sectors) == 0 {
		return nil, fmt.Errorf("empty sector table")
	}
	return sectors, nil
}
