package cryptowallet

import (
	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/compliance"
)

const monthlyDays = 30

// Daily withdrawal limits in coin units, by risk level and cryptocurrency.
var dailyLimits = map[compliance.RiskLevel]map[string]decimal.Decimal{
	compliance.RiskLow: {
		"BTC":  decimal.RequireFromString("2"),
		"ETH":  decimal.RequireFromString("30"),
		"USDT": decimal.RequireFromString("50000"),
		"USDC": decimal.RequireFromString("50000"),
		"LTC":  decimal.RequireFromString("500"),
		"XRP":  decimal.RequireFromString("100000"),
		"SOL":  decimal.RequireFromString("1000"),
	},
	compliance.RiskMedium: {
		"BTC":  decimal.RequireFromString("0.5"),
		"ETH":  decimal.RequireFromString("10"),
		"USDT": decimal.RequireFromString("20000"),
		"USDC": decimal.RequireFromString("20000"),
		"LTC":  decimal.RequireFromString("150"),
		"XRP":  decimal.RequireFromString("40000"),
		"SOL":  decimal.RequireFromString("300"),
	},
	compliance.RiskHigh: {
		"BTC":  decimal.RequireFromString("0.1"),
		"ETH":  decimal.RequireFromString("2"),
		"USDT": decimal.RequireFromString("5000"),
		"USDC": decimal.RequireFromString("5000"),
		"LTC":  decimal.RequireFromString("25"),
		"XRP":  decimal.RequireFromString("10000"),
		"SOL":  decimal.RequireFromString("50"),
	},
}

var baselineDailyLimit = decimal.NewFromInt(1)

// DefaultLimits returns the daily and monthly limits for a risk level and
// cryptocurrency. Pairs missing from the table get one unit per day.
func DefaultLimits(risk compliance.RiskLevel, cryptocurrency string) (daily, monthly decimal.Decimal) {
	daily = baselineDailyLimit
	if byCoin, ok := dailyLimits[risk]; ok {
		if v, ok := byCoin[cryptocurrency]; ok {
			daily = v
		}
	}
	return daily, daily.Mul(decimal.NewFromInt(monthlyDays))
}
