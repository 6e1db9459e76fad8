// Package models defines the standard data structures shared between
// providers, tools, and the API layer.
package models

// Quote is one row of the full A-share real-time snapshot, one per
// tradable instrument. All numeric fields are coerced to float64 at
// parse time; values the provider omits or returns as "-" become 0.
type Quote struct {
	Code           string  `json:"code"`             // 6-digit instrument code, e.g. "600519"
	Name           string  `json:"name"`             // display name, e.g. "贵州茅台"
	Price          float64 `json:"price"`            // 最新价
	ChangePct      float64 `json:"change_pct"`       // 涨跌幅 (%)
	Change         float64 `json:"change"`           // 涨跌额
	Volume         float64 `json:"volume"`           // 成交量 (手)
	Amount         float64 `json:"amount"`           // 成交额 (元)
	Open           float64 `json:"open"`             // 今开
	High           float64 `json:"high"`             // 最高
	Low            float64 `json:"low"`              // 最低
	PrevClose      float64 `json:"prev_close"`       // 昨收
	TurnoverRate   float64 `json:"turnover_rate"`    // 换手率 (%)
	PE             float64 `json:"pe"`               // 市盈率(动态)
	PB             float64 `json:"pb"`               // 市净率
	TotalMarketCap float64 `json:"total_market_cap"` // 总市值 (元)
	FloatMarketCap float64 `json:"float_market_cap"` // 流通市值 (元)
}

// Sector is one row of the industry board snapshot.
type Sector struct {
	Name         string  `json:"name"`          // 板块名称
	Price        float64 `json:"price"`         // 最新价 (板块指数点位)
	ChangePct    float64 `json:"change_pct"`    // 涨跌幅 (%)
	Change       float64 `json:"change"`        // 涨跌额
	Volume       float64 `json:"volume"`        // 成交量 (手)
	Amount       float64 `json:"amount"`        // 成交额 (元)
	AdvanceCount int     `json:"advance_count"` // 上涨家数
	DeclineCount int     `json:"decline_count"` // 下跌家数
}

// IndexQuote is a major market index level.
type IndexQuote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"` // 成交量 (股)
	Amount    float64 `json:"amount"` // 成交额 (元)
}

// NewsArticle is a single market news headline from an RSS source.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"` // RFC3339, empty when feed omits it
}
