package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Keyspace is the storage view the collector reads at scrape time.
type Keyspace interface {
	Len() int
	Shards() int
	ShardLens() []int
}

// Collector reports live keyspace statistics.
type Collector struct {
	ks Keyspace

	keys      *prometheus.Desc
	shards    *prometheus.Desc
	shardKeys *prometheus.Desc
}

// NewCollector creates a collector over ks.
func NewCollector(ks Keyspace) *Collector {
	return &Collector{
		ks: ks,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Stored keys, including expired keys not yet observed by a reader.",
			nil, nil,
		),
		shards: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "shards"),
			"Lock shards in the storage map.",
			nil, nil,
		),
		shardKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "shard_keys"),
			"Stored keys per lock shard.",
			[]string{"shard"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.shards
	ch <- c.shardKeys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.ks.Len()))
	ch <- prometheus.MustNewConstMetric(c.shards, prometheus.GaugeValue, float64(c.ks.Shards()))
	for i, n := range c.ks.ShardLens() {
		ch <- prometheus.MustNewConstMetric(c.shardKeys, prometheus.GaugeValue, float64(n), strconv.Itoa(i))
	}
}
