package cryptowallet

import (
	"testing"

	"github.com/corebank/corebank/internal/compliance"
)

func TestDefaultLimits(t *testing.T) {
	tests := []struct {
		risk    compliance.RiskLevel
		coin    string
		daily   string
		monthly string
	}{
		{compliance.RiskLow, "BTC", "2", "60"},
		{compliance.RiskMedium, "ETH", "10", "300"},
		{compliance.RiskHigh, "USDT", "5000", "150000"},
		{compliance.RiskHigh, "DOGE", "1", "30"},
		{"", "BTC", "1", "30"},
	}
	for _, tt := range tests {
		daily, monthly := DefaultLimits(tt.risk, tt.coin)
		if !daily.Equal(d(tt.daily)) || !monthly.Equal(d(tt.monthly)) {
			t.Fatalf("%s/%s: expected %s/%s, got %s/%s", tt.risk, tt.coin, tt.daily, tt.monthly, daily, monthly)
		}
	}
}

func TestDefaultLimitsMonthlyIsThirtyDays(t *testing.T) {
	for risk, coins := range dailyLimits {
		for coin := range coins {
			daily, monthly := DefaultLimits(risk, coin)
			if !monthly.Equal(daily.Mul(d("30"))) {
				t.Fatalf("%s/%s: monthly %s is not 30 x %s", risk, coin, monthly, daily)
			}
		}
	}
}
