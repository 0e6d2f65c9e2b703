// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package dagcache

import "github.com/prometheus/client_golang/prometheus"

// metrics tracks the effectiveness of a Store. The collectors are not
// registered anywhere, see Store.Collectors.
type metrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	generations prometheus.Counter
	evictions   prometheus.Counter
	failures    prometheus.Counter
	cached      prometheus.Gauge
	genSeconds  prometheus.Histogram
}

func newMetrics(variant string) *metrics {
	labels := prometheus.Labels{"variant": variant}
	return &metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "hits_total",
			Help:        "Lookups served by an epoch already in memory",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "misses_total",
			Help:        "Lookups that had to create the epoch",
			ConstLabels: labels,
		}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "generations_total",
			Help:        "Verification caches generated",
			ConstLabels: labels,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "evictions_total",
			Help:        "Epochs dropped from memory",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "failures_total",
			Help:        "Epochs whose cache could not be generated",
			ConstLabels: labels,
		}),
		cached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "epochs",
			Help:        "Epochs currently held in memory",
			ConstLabels: labels,
		}),
		genSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "ethash",
			Subsystem:   "dagcache",
			Name:        "generation_seconds",
			Help:        "Time spent generating one verification cache",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.hits, m.misses, m.generations, m.evictions, m.failures, m.cached, m.genSeconds}
}
