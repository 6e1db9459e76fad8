package tools

import (
	"fmt"
	"log"
)

const demoNote = "演示数据"

// demoFallback is the single error-recovery path for every market
// operation: the failure is logged, never propagated, and the caller
// receives the registered demo payload with the error string attached.
func (ts *Toolset) demoFallback(op string, payload map[string]any, err error) string {
	log.Printf("tools: %s falling back to demo data: %v", op, err)
	payload["error"] = err.Error()
	out, encErr := encodeJSON(payload)
	if encErr != nil {
		return fmt.Sprintf("{\n  \"error\": %q\n}", err.Error())
	}
	return out
}

func demoIndexData() map[string]any {
	return map[string]any{
		"上证指数": indexEntry{Code: "000001", Price: 3085.15, ChangePct: 0.52, Change: 15.93, Volume: 125680000, Amount: 158965000000, Note: demoNote},
		"深证成指": indexEntry{Code: "399001", Price: 9856.78, ChangePct: 0.78, Change: 76.23, Volume: 234567000, Amount: 345678000000, Note: demoNote},
		"创业板指": indexEntry{Code: "399006", Price: 1956.89, ChangePct: -0.23, Change: -4.51, Volume: 98765400, Amount: 123456000000, Note: demoNote},
		"科创50":  indexEntry{Code: "000688", Price: 892.45, ChangePct: 1.25, Change: 11.02, Volume: 45678900, Amount: 67890000000, Note: demoNote},
	}
}

func demoRanking() map[string]any {
	return map[string]any{
		"涨幅榜": []rankedQuote{
			{Code: "600123", Name: "兰花科创", Price: 15.68, ChangePct: 10.05, Change: 1.43, Volume: 125680000, Amount: 1589650000},
			{Code: "002456", Name: "欧菲光", Price: 12.35, ChangePct: 9.98, Change: 1.12, Volume: 234567000, Amount: 3456780000},
		},
		"跌幅榜": []rankedQuote{
			{Code: "300456", Name: "赛微电子", Price: 23.45, ChangePct: -9.95, Change: -2.59, Volume: 98765400, Amount: 1234560000},
			{Code: "600789", Name: "鲁抗医药", Price: 8.92, ChangePct: -9.92, Change: -0.98, Volume: 45678900, Amount: 678900000},
		},
		"note": demoNote,
	}
}

func demoStatistics() map[string]any {
	return map[string]any{
		"涨跌停统计": limitStats{LimitUp: 45, LimitDown: 12},
		"涨跌家数":  breadthStats{Advancing: 2856, Declining: 1523, Flat: 89},
		"市场表现":  marketPerformance{AvgChangePct: 0.35, TotalAmount: 7654.32},
		"股票总数":  4468,
		"note":  demoNote,
	}
}

func demoSectors() map[string]any {
	return map[string]any{
		"表现最好的板块": []sectorEntry{
			{Name: "AI应用", Price: 1256.78, ChangePct: 4.52, Change: 54.32, Advancing: 45, Declining: 3},
			{Name: "半导体", Price: 3456.89, ChangePct: 3.25, Change: 108.76, Advancing: 89, Declining: 12},
		},
		"表现最差的板块": []sectorEntry{
			{Name: "房地产", Price: 789.45, ChangePct: -2.15, Change: -17.34, Advancing: 8, Declining: 67},
			{Name: "银行", Price: 1023.56, ChangePct: -1.23, Change: -12.78, Advancing: 12, Declining: 34},
		},
		"note": demoNote,
	}
}

func demoStockInfo(code string) map[string]any {
	return map[string]any{
		"代码":   code,
		"名称":   "示例股票",
		"最新价":  15.68,
		"涨跌幅":  5.23,
		"涨跌额":  0.78,
		"今开":   15.10,
		"最高":   15.85,
		"最低":   15.05,
		"昨收":   14.90,
		"成交量":  125680000,
		"成交额":  1987654321,
		"换手率":  3.45,
		"市盈率":  25.6,
		"市净率":  2.8,
		"总市值":  156800000000,
		"流通市值": 98760000000,
		"note": demoNote,
	}
}
