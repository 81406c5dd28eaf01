// Package metrics exposes Prometheus collectors for parsing, transactions and
// the datastore cache.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the semdoc metrics. The zero value is not usable; use New.
// A nil *Collector is a valid no-op recorder.
type Collector struct {
	parses       prometheus.Counter
	quads        prometheus.Counter
	recoveries   prometheus.Counter
	parseSeconds prometheus.Histogram
	transactions *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		parses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "parses_total",
			Help:      "Number of RDFa documents parsed.",
		}),
		quads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "quads_parsed_total",
			Help:      "Number of quads extracted by the RDFa reader.",
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "recoveries_total",
			Help:      "Number of malformed RDFa fragments skipped while parsing.",
		}),
		parseSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semdoc",
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing RDFa documents.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "transactions_total",
			Help:      "Number of transactions applied, by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "datastore_cache_hits_total",
			Help:      "Datastore lookups served from the per-document cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semdoc",
			Name:      "datastore_cache_misses_total",
			Help:      "Datastore lookups that had to build a datastore.",
		}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{
		c.parses, c.quads, c.recoveries, c.parseSeconds, c.transactions, c.cacheHits, c.cacheMisses,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveParse records one parse.
func (c *Collector) ObserveParse(d time.Duration, quads, recoveries int) {
	if c == nil {
		return
	}
	c.parses.Inc()
	c.quads.Add(float64(quads))
	c.recoveries.Add(float64(recoveries))
	c.parseSeconds.Observe(d.Seconds())
}

// Transaction outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeNoop     = "noop"
)

// ObserveTransaction records an applied or rejected transaction.
func (c *Collector) ObserveTransaction(outcome string) {
	if c == nil {
		return
	}
	c.transactions.WithLabelValues(outcome).Inc()
}

// ObserveCache records a datastore cache lookup.
func (c *Collector) ObserveCache(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.cacheHits.Inc()
		return
	}
	c.cacheMisses.Inc()
}
