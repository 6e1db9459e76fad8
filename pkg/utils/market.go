// Package utils provides small shared helpers for A-share
// trading-session status.
package utils

import (
	"time"
)

// cst is the exchange time zone. A fixed zone avoids depending on the
// host's tzdata (Windows images often lack it).
var cst = time.FixedZone("CST", 8*60*60)

// NowCST returns the current time in Beijing time.
func NowCST() time.Time {
	return time.Now().In(cst)
}

// MarketStatus returns a human-readable A-share session status for the
// given time: 盘前 / 集合竞价 / 交易中 / 午间休市 / 已收盘 / 周末休市.
// Exchange holidays are not consulted; weekends are.
func MarketStatus(t time.Time) string {
	t = t.In(cst)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return "周末休市"
	}

	// Sessions: 9:30–11:30, 13:00–15:00; call auction from 9:15.
	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes < 9*60+15:
		return "盘前"
	case minutes < 9*60+30:
		return "集合竞价"
	case minutes < 11*60+30:
		return "交易中"
	case minutes < 13*60:
		return "午间休市"
	case minutes < 15*60:
		return "交易中"
	default:
		return "已收盘"
	}
}

// IsTradingHours reports whether t falls inside a continuous trading
// session on a weekday.
func IsTradingHours(t time.Time) bool {
	return MarketStatus(t) == "交易中"
}
