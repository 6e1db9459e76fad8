package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/pkg/models"
)

// majorIndices maps the four major index display names to their codes.
// The display names and order are part of the downstream contract.
var majorIndices = []struct {
	Name string
	Code string
}{
	{"上证指数", "000001"},
	{"深证成指", "399001"},
	{"创业板指", "399006"},
	{"科创50", "000688"},
}

const rankingSize = 20
const sectorRankSize = 10

// Toolset exposes the A-share market-data query operations. Every
// operation returns a 2-space-indented UTF-8 JSON string with Chinese
// field names; any fetch or transform failure degrades to a static
// demo payload annotated with the error instead of propagating.
type Toolset struct {
	registry *provider.Registry
}

// NewToolset creates a toolset backed by the given provider registry.
func NewToolset(reg *provider.Registry) *Toolset {
	return &Toolset{registry: reg}
}

// RegisterTools registers all market-data tools on a tool registry so
// they can be listed and called by name.
func (ts *Toolset) RegisterTools(reg *Registry) {
	reg.RegisterFunc("get_stock_index_data",
		"获取 A股主要指数数据（上证指数、深证成指、创业板指、科创50），返回 JSON 格式的指数数据",
		ObjectSchema("no parameters", nil),
		func(ctx context.Context, _ json.RawMessage) (string, error) {
			return ts.IndexData(ctx), nil
		})

	reg.RegisterFunc("get_stock_ranking",
		"获取 A股涨跌幅排行榜（涨幅榜和跌幅榜前20名），返回 JSON 格式的排行数据",
		ObjectSchema("no parameters", nil),
		func(ctx context.Context, _ json.RawMessage) (string, error) {
			return ts.Ranking(ctx), nil
		})

	reg.RegisterFunc("get_market_statistics",
		"获取市场统计数据（涨跌停统计、涨跌家数、平均涨跌幅、总成交额），返回 JSON 格式的统计数据",
		ObjectSchema("no parameters", nil),
		func(ctx context.Context, _ json.RawMessage) (string, error) {
			return ts.MarketStatistics(ctx), nil
		})

	reg.RegisterFunc("get_sector_performance",
		"获取行业板块涨跌幅排行（表现最好和最差的板块各10个），返回 JSON 格式的板块数据",
		ObjectSchema("no parameters", nil),
		func(ctx context.Context, _ json.RawMessage) (string, error) {
			return ts.SectorPerformance(ctx), nil
		})

	reg.RegisterFunc("get_stock_info",
		"获取特定股票的详细信息，参数为股票代码，如 \"000001\"（平安银行）",
		ObjectSchema("stock lookup arguments", map[string]*JSONSchema{
			"stock_code": StringProp("股票代码，如 \"000001\""),
		}, "stock_code"),
		func(ctx context.Context, args json.RawMessage) (string, error) {
			var in struct {
				StockCode string `json:"stock_code"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return "", fmt.Errorf("get_stock_info: invalid arguments: %w", err)
			}
			if in.StockCode == "" {
				return "", fmt.Errorf("get_stock_info: stock_code is required")
			}
			return ts.StockInfo(ctx, in.StockCode), nil
		})
}

// Response shapes. Field order follows the downstream contract; the
// Chinese tags must not be translated or renamed.

type indexEntry struct {
	Code      string  `json:"代码"`
	Price     float64 `json:"最新价"`
	ChangePct float64 `json:"涨跌幅"`
	Change    float64 `json:"涨跌额"`
	Volume    float64 `json:"成交量"`
	Amount    float64 `json:"成交额"`
	Note      string  `json:"note,omitempty"`
}

type rankedQuote struct {
	Code      string  `json:"代码"`
	Name      string  `json:"名称"`
	Price     float64 `json:"最新价"`
	ChangePct float64 `json:"涨跌幅"`
	Change    float64 `json:"涨跌额"`
	Volume    float64 `json:"成交量"`
	Amount    float64 `json:"成交额"`
}

type rankingResult struct {
	Gainers []rankedQuote `json:"涨幅榜"`
	Losers  []rankedQuote `json:"跌幅榜"`
}

type limitStats struct {
	LimitUp   int `json:"涨停家数"`
	LimitDown int `json:"跌停家数"`
}

type breadthStats struct {
	Advancing int `json:"上涨家数"`
	Declining int `json:"下跌家数"`
	Flat      int `json:"平盘家数"`
}

type marketPerformance struct {
	AvgChangePct float64 `json:"平均涨跌幅"`
	TotalAmount  float64 `json:"总成交额"` // 亿元
}

type statisticsResult struct {
	Limits      limitStats        `json:"涨跌停统计"`
	Breadth     breadthStats      `json:"涨跌家数"`
	Performance marketPerformance `json:"市场表现"`
	TotalStocks int               `json:"股票总数"`
}

type sectorEntry struct {
	Name      string  `json:"板块名称"`
	Price     float64 `json:"最新价"`
	ChangePct float64 `json:"涨跌幅"`
	Change    float64 `json:"涨跌额"`
	Advancing int     `json:"上涨家数"`
	Declining int     `json:"下跌家数"`
}

type sectorResult struct {
	Best  []sectorEntry `json:"表现最好的板块"`
	Worst []sectorEntry `json:"表现最差的板块"`
}

type stockInfo struct {
	Code           string  `json:"代码"`
	Name           string  `json:"名称"`
	Price          float64 `json:"最新价"`
	ChangePct      float64 `json:"涨跌幅"`
	Change         float64 `json:"涨跌额"`
	Open           float64 `json:"今开"`
	High           float64 `json:"最高"`
	Low            float64 `json:"最低"`
	PrevClose      float64 `json:"昨收"`
	Volume         float64 `json:"成交量"`
	Amount         float64 `json:"成交额"`
	TurnoverRate   float64 `json:"换手率"`
	PE             float64 `json:"市盈率"`
	PB             float64 `json:"市净率"`
	TotalMarketCap float64 `json:"总市值"`
	FloatMarketCap float64 `json:"流通市值"`
}

// IndexData returns the four major index quotes, looked up by code in
// the full-market snapshot. An index missing from the snapshot yields a
// zeroed row tagged 暂无数据 rather than an error.
func (ts *Toolset) IndexData(ctx context.Context) string {
	out, err := ts.indexData(ctx)
	if err != nil {
		return ts.demoFallback("get_stock_index_data", demoIndexData(), err)
	}
	return out
}

func (ts *Toolset) indexData(ctx context.Context) (string, error) {
	quotes, err := ts.snapshot(ctx)
	if err != nil {
		return "", err
	}

	byCode := make(map[string]models.Quote, len(quotes))
	for _, q := range quotes {
		byCode[q.Code] = q
	}

	result := make(map[string]indexEntry, len(majorIndices))
	for _, idx := range majorIndices {
		q, ok := byCode[idx.Code]
		if !ok {
			result[idx.Name] = indexEntry{Code: idx.Code, Note: "暂无数据"}
			continue
		}
		result[idx.Name] = indexEntry{
			Code:      idx.Code,
			Price:     q.Price,
			ChangePct: q.ChangePct,
			Change:    q.Change,
			Volume:    q.Volume,
			Amount:    q.Amount,
		}
	}
	return encodeJSON(result)
}

// Ranking returns the top-20 gainers and top-20 losers by percent change.
func (ts *Toolset) Ranking(ctx context.Context) string {
	out, err := ts.ranking(ctx)
	if err != nil {
		return ts.demoFallback("get_stock_ranking", demoRanking(), err)
	}
	return out
}

func (ts *Toolset) ranking(ctx context.Context) (string, error) {
	quotes, err := ts.snapshot(ctx)
	if err != nil {
		return "", err
	}

	sorted := make([]models.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePct > sorted[j].ChangePct
	})

	n := rankingSize
	if len(sorted) < n {
		n = len(sorted)
	}

	result := rankingResult{
		Gainers: make([]rankedQuote, 0, n),
		Losers:  make([]rankedQuote, 0, n),
	}
	for _, q := range sorted[:n] {
		result.Gainers = append(result.Gainers, toRankedQuote(q))
	}
	// Losers are the same ranking read from the bottom up.
	for i := 0; i < n; i++ {
		result.Losers = append(result.Losers, toRankedQuote(sorted[len(sorted)-1-i]))
	}
	return encodeJSON(result)
}

func toRankedQuote(q models.Quote) rankedQuote {
	return rankedQuote{
		Code:      q.Code,
		Name:      q.Name,
		Price:     q.Price,
		ChangePct: q.ChangePct,
		Change:    q.Change,
		Volume:    q.Volume,
		Amount:    q.Amount,
	}
}

// MarketStatistics aggregates the full snapshot into limit-up/limit-down
// counts, market breadth, mean percent change and total turnover in 亿元.
func (ts *Toolset) MarketStatistics(ctx context.Context) string {
	out, err := ts.marketStatistics(ctx)
	if err != nil {
		return ts.demoFallback("get_market_statistics", demoStatistics(), err)
	}
	return out
}

func (ts *Toolset) marketStatistics(ctx context.Context) (string, error) {
	quotes, err := ts.snapshot(ctx)
	if err != nil {
		return "", err
	}

	var stats statisticsResult
	var sumPct, sumAmount float64
	for _, q := range quotes {
		switch {
		case q.ChangePct >= 9.9:
			stats.Limits.LimitUp++
		case q.ChangePct <= -9.9:
			stats.Limits.LimitDown++
		}
		switch {
		case q.ChangePct > 0:
			stats.Breadth.Advancing++
		case q.ChangePct < 0:
			stats.Breadth.Declining++
		default:
			stats.Breadth.Flat++
		}
		sumPct += q.ChangePct
		sumAmount += q.Amount
	}

	stats.TotalStocks = len(quotes)
	stats.Performance.AvgChangePct = round2(sumPct / float64(len(quotes)))
	stats.Performance.TotalAmount = round2(sumAmount / 1e8)
	return encodeJSON(stats)
}

// SectorPerformance returns the 10 best and 10 worst industry sectors
// by percent change. Both lists are in descending order, the worst list
// being the tail of the same ranking.
func (ts *Toolset) SectorPerformance(ctx context.Context) string {
	out, err := ts.sectorPerformance(ctx)
	if err != nil {
		return ts.demoFallback("get_sector_performance", demoSectors(), err)
	}
	return out
}

func (ts *Toolset) sectorPerformance(ctx context.Context) (string, error) {
	res, err := ts.registry.FetchWithFallback(ctx, provider.ModelSectorSnapshot, provider.QueryParams{})
	if err != nil {
		return "", err
	}
	sectors, ok := res.Data.([]models.Sector)
	if !ok {
		return "", fmt.Errorf("unexpected sector snapshot type %T", res.Data)
	}
	if len(sectors) == 0 {
		return "", fmt.Errorf("sector snapshot is empty")
	}

	sorted := make([]models.Sector, len(sectors))
	copy(sorted, sectors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ChangePct > sorted[j].ChangePct
	})

	n := sectorRankSize
	if len(sorted) < n {
		n = len(sorted)
	}

	result := sectorResult{
		Best:  make([]sectorEntry, 0, n),
		Worst: make([]sectorEntry, 0, n),
	}
	for _, s := range sorted[:n] {
		result.Best = append(result.Best, toSectorEntry(s))
	}
	for _, s := range sorted[len(sorted)-n:] {
		result.Worst = append(result.Worst, toSectorEntry(s))
	}
	return encodeJSON(result)
}

func toSectorEntry(s models.Sector) sectorEntry {
	return sectorEntry{
		Name:      s.Name,
		Price:     s.Price,
		ChangePct: s.ChangePct,
		Change:    s.Change,
		Advancing: s.AdvanceCount,
		Declining: s.DeclineCount,
	}
}

// StockInfo returns the detailed quote for one stock code. A code
// absent from the snapshot yields a plain not-found string, not JSON.
func (ts *Toolset) StockInfo(ctx context.Context, code string) string {
	out, err := ts.stockInfo(ctx, code)
	if err != nil {
		return ts.demoFallback("get_stock_info", demoStockInfo(code), err)
	}
	return out
}

func (ts *Toolset) stockInfo(ctx context.Context, code string) (string, error) {
	quotes, err := ts.snapshot(ctx)
	if err != nil {
		return "", err
	}

	for _, q := range quotes {
		if q.Code != code {
			continue
		}
		return encodeJSON(stockInfo{
			Code:           q.Code,
			Name:           q.Name,
			Price:          q.Price,
			ChangePct:      q.ChangePct,
			Change:         q.Change,
			Open:           q.Open,
			High:           q.High,
			Low:            q.Low,
			PrevClose:      q.PrevClose,
			Volume:         q.Volume,
			Amount:         q.Amount,
			TurnoverRate:   q.TurnoverRate,
			PE:             q.PE,
			PB:             q.PB,
			TotalMarketCap: q.TotalMarketCap,
			FloatMarketCap: q.FloatMarketCap,
		})
	}
	// Successful lookup with zero matches is not a fetch failure.
	return fmt.Sprintf("未找到股票代码: %s", code), nil
}

// snapshot fetches the full-market quote table through the registry,
// falling back across providers.
func (ts *Toolset) snapshot(ctx context.Context) ([]models.Quote, error) {
	res, err := ts.registry.FetchWithFallback(ctx, provider.ModelSpotSnapshot, provider.QueryParams{})
	if err != nil {
		return nil, err
	}
	quotes, ok := res.Data.([]models.Quote)
	if !ok {
		return nil, fmt.Errorf("unexpected spot snapshot type %T", res.Data)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("spot snapshot is empty")
	}
	return quotes, nil
}

// encodeJSON renders v as 2-space-indented UTF-8 JSON without escaping
// non-ASCII characters. The Chinese keys go to the consumer verbatim.
func encodeJSON(v any) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// round2 rounds to 2 decimal places, halves away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
