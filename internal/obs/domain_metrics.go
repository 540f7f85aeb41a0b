package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotationsPricedTotal counts pricing engine invocations by mode and outcome.
	QuotationsPricedTotal *prometheus.CounterVec
	// RatesRefreshTotal counts exchange rate refresh runs by outcome.
	RatesRefreshTotal *prometheus.CounterVec
	// ExportRegisterBuildsTotal counts export register builds by outcome.
	ExportRegisterBuildsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotationsPricedTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_priced_total",
			Help:      "Count of quotation pricing runs by shipment mode and outcome.",
		}, []string{"mode", "result"}))
		RatesRefreshTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rates_refresh_total",
			Help:      "Count of exchange rate refresh runs by outcome.",
		}, []string{"result"}))
		ExportRegisterBuildsTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_register_builds_total",
			Help:      "Count of courier export register builds by outcome.",
		}, []string{"result"}))
	})
}

// ObserveQuotationPriced increments the pricing counter, tolerating the
// collectors not being registered (unit tests).
func ObserveQuotationPriced(mode, result string) {
	if QuotationsPricedTotal == nil {
		return
	}
	QuotationsPricedTotal.WithLabelValues(mode, result).Inc()
}

// ObserveRatesRefresh increments the rate refresh counter.
func ObserveRatesRefresh(result string) {
	if RatesRefreshTotal == nil {
		return
	}
	RatesRefreshTotal.WithLabelValues(result).Inc()
}

// ObserveExportRegisterBuild increments the export register build counter.
func ObserveExportRegisterBuild(result string) {
	if ExportRegisterBuildsTotal == nil {
		return
	}
	ExportRegisterBuildsTotal.WithLabelValues(result).Inc()
}
