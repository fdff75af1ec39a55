package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"
)

// Storefront records cart, checkout, gateway and cache activity.
type Storefront struct {
	cartMutations  *prometheus.CounterVec
	checkouts      *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a collector whose methods are no-ops.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and result.",
	}, []string{"op", "result"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_requests_total",
		Help: "Checkout submissions by kind and result.",
	}, []string{"kind", "result"})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_duration_seconds",
		Help:    "Latency of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "op"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache-aside lookups by cache and result.",
	}, []string{"cache", "result"})
	reg.MustRegister(cartMutations, checkouts, gatewayLatency, cacheLookups)
	return &Storefront{
		cartMutations:  cartMutations,
		checkouts:      checkouts,
		gatewayLatency: gatewayLatency,
		cacheLookups:   cacheLookups,
	}
}

// IncCartMutation counts one cart write.
func (s *Storefront) IncCartMutation(op string, err error) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op), resultOf(err)).Inc()
}

// IncCheckout counts one checkout submission.
func (s *Storefront) IncCheckout(kind string, err error) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(kind), resultOf(err)).Inc()
}

// ObserveGateway records the duration of one gateway call.
func (s *Storefront) ObserveGateway(driver, op string, duration time.Duration) {
	if s == nil || s.gatewayLatency == nil {
		return
	}
	s.gatewayLatency.WithLabelValues(normalizeLabel(driver), normalizeLabel(op)).Observe(duration.Seconds())
}

// IncCacheLookup counts a cache hit or miss.
func (s *Storefront) IncCacheLookup(cache string, hit bool) {
	if s == nil || s.cacheLookups == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	s.cacheLookups.WithLabelValues(normalizeLabel(cache), result).Inc()
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
