package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/hashguard/pkg/cmap"
)

// StatsSource reports per-shard store statistics. *cmap.Map implements it.
type StatsSource interface {
	Stats() []cmap.ShardStats
}

// MapCollector exports store statistics. Values are read at scrape time
// so the store carries no metric state of its own.
type MapCollector struct {
	src StatsSource

	size            *prometheus.Desc
	capacity        *prometheus.Desc
	loadFactor      *prometheus.Desc
	maxChain        *prometheus.Desc
	collisionEvents *prometheus.Desc
	collisionsTotal *prometheus.Desc
	attacksTotal    *prometheus.Desc
	rehashTotal     *prometheus.Desc
}

// NewMapCollector creates a collector reading from src.
func NewMapCollector(src StatsSource) *MapCollector {
	labels := []string{"shard"}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "map", name), help, labels, nil)
	}
	return &MapCollector{
		src:             src,
		size:            desc("entries", "Entries stored in the shard."),
		capacity:        desc("buckets", "Bucket count of the shard."),
		loadFactor:      desc("load_factor", "Entries per bucket."),
		maxChain:        desc("max_chain_length", "Length of the longest bucket chain."),
		collisionEvents: desc("collision_events", "Collision events inside the detection window."),
		collisionsTotal: desc("collisions_total", "Collision events recorded since start."),
		attacksTotal:    desc("attacks_detected_total", "Collision attacks detected since start."),
		rehashTotal:     desc("rehash_total", "Rebuilds under a fresh seed since start."),
	}
}

// Describe implements prometheus.Collector.
func (c *MapCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.size, c.capacity, c.loadFactor, c.maxChain,
		c.collisionEvents, c.collisionsTotal, c.attacksTotal, c.rehashTotal,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *MapCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.src.Stats() {
		shard := strconv.Itoa(s.Index)
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, shard)
		}
		counter := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, shard)
		}
		gauge(c.size, float64(s.Size))
		gauge(c.capacity, float64(s.Capacity))
		gauge(c.loadFactor, s.LoadFactor)
		gauge(c.maxChain, float64(s.MaxChain))
		gauge(c.collisionEvents, float64(s.CollisionEvents))
		counter(c.collisionsTotal, float64(s.CollisionsTotal))
		counter(c.attacksTotal, float64(s.AttacksDetected))
		counter(c.rehashTotal, float64(s.RehashCount))
	}
}
