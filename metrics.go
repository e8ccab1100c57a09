// Copyright 2024 The pmtree Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pmtree

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional set of Prometheus collectors a MerkleTree
// reports to via WithMetrics. A nil *Metrics (the zero value a tree has
// unless WithMetrics is passed) disables reporting; every method below
// is safe to call on a nil receiver.
type Metrics struct {
	news         prometheus.Counter
	sets         prometheus.Counter
	deletes      prometheus.Counter
	batchInserts prometheus.Counter
	batchLeaves  prometheus.Histogram
}

// NewMetrics creates and registers a Metrics against reg, or against
// prometheus.DefaultRegisterer if reg is nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		news: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmtree_trees_created_total",
			Help: "Number of MerkleTree instances constructed via New.",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmtree_sets_total",
			Help: "Number of Set/Delete/UpdateNext calls completed.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmtree_deletes_total",
			Help: "Number of Delete calls completed.",
		}),
		batchInserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmtree_batch_inserts_total",
			Help: "Number of BatchInsert/SetRange calls completed.",
		}),
		batchLeaves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pmtree_batch_insert_leaves",
			Help:    "Number of leaves written per BatchInsert/SetRange call.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}

	for _, c := range []prometheus.Collector{m.news, m.sets, m.deletes, m.batchInserts, m.batchLeaves} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeNew() {
	if m == nil {
		return
	}
	m.news.Inc()
}

func (m *Metrics) observeSet() {
	if m == nil {
		return
	}
	m.sets.Inc()
}

func (m *Metrics) observeDelete() {
	if m == nil {
		return
	}
	m.deletes.Inc()
}

func (m *Metrics) observeBatchInsert(count int) {
	if m == nil {
		return
	}
	m.batchInserts.Inc()
	m.batchLeaves.Observe(float64(count))
}
