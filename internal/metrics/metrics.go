package metrics

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Outcome labels for balance mutations.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Collector owns the service's Prometheus registry. A nil *Collector is valid
// and records nothing, so services can run without metrics wired in.
type Collector struct {
	registry          *prometheus.Registry
	balanceMutations  *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	walletValuations  *prometheus.HistogramVec
	riskScores        prometheus.Histogram
}

// NewCollector registers the ledger metrics on a private registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		balanceMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_balance_mutations_total",
			Help: "Balance mutations applied to accounts and wallets",
		}, []string{"operation", "outcome"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_created_total",
			Help: "Transactions recorded by type",
		}, []string{"type"}),
		statusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_status_transitions_total",
			Help: "Lifecycle status changes by entity",
		}, []string{"entity", "from", "to"}),
		walletValuations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_wallet_fiat_valuation",
			Help:    "Fiat valuation of crypto wallets after each balance or rate change",
			Buckets: prometheus.ExponentialBuckets(1, 10, 9),
		}, []string{"cryptocurrency", "fiat_currency"}),
		riskScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transaction_risk_score",
			Help:    "Distribution of transaction risk scores",
			Buckets: []float64{0, 20, 40, 60, 70, 80, 100},
		}),
	}
}

// BalanceMutation counts one credit, debit, block, unblock or wallet update.
func (c *Collector) BalanceMutation(operation string, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	c.balanceMutations.WithLabelValues(operation, outcome).Inc()
}

// TransactionCreated counts a new transaction and observes its risk score.
func (c *Collector) TransactionCreated(txType string, riskScore int) {
	if c == nil {
		return
	}
	c.transactions.WithLabelValues(txType).Inc()
	c.riskScores.Observe(float64(riskScore))
}

// StatusTransition counts a status change of an account or transaction.
func (c *Collector) StatusTransition(entity, from, to string) {
	if c == nil {
		return
	}
	c.statusTransitions.WithLabelValues(entity, from, to).Inc()
}

// WalletValuation observes a wallet's fiat valuation, keyed by currency pair
// so the series count stays bounded by the supported pairs.
func (c *Collector) WalletValuation(cryptocurrency, fiatCurrency string, value decimal.Decimal) {
	if c == nil {
		return
	}
	c.walletValuations.WithLabelValues(cryptocurrency, fiatCurrency).Observe(value.InexactFloat64())
}

// HTTPHandler exposes the registry in the Prometheus text format.
func (c *Collector) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Handler adapts HTTPHandler for fiber.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(c.HTTPHandler())
}
