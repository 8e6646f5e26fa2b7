package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/metrics"
)

type metricValue struct {
	Value       float64
	LabelValues []string
}

// collector implements prometheus.Collector with values read on every scrape.
type collector struct {
	desc        *prometheus.Desc
	valueType   prometheus.ValueType
	collectFunc func() []metricValue
}

func newGaugeCollector(opts prometheus.Opts, variableLabels []string, collectFunc func() []metricValue) *collector {
	fqname := prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
	return &collector{
		desc:        prometheus.NewDesc(fqname, opts.Help, variableLabels, opts.ConstLabels),
		valueType:   prometheus.GaugeValue,
		collectFunc: collectFunc,
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, v := range c.collectFunc() {
		ch <- prometheus.MustNewConstMetric(c.desc, c.valueType, v.Value, v.LabelValues...)
	}
}

func setupMetrics(db *gorm.DB) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	if rawDB, err := db.DB(); err == nil {
		registry.MustRegister(collectors.NewDBStatsCollector(rawDB, db.Dialector.Name()))
	}

	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A metric with a constant '1' value labeled by branch, version, commit, and date from which the server was built",
		ConstLabels: prometheus.Labels{
			"branch":  internal.Branch,
			"version": internal.FullVersion(),
			"commit":  internal.Commit,
			"date":    internal.Date,
		},
	}, func() float64 { return 1 }))

	registry.MustRegister(newGaugeCollector(prometheus.Opts{
		Namespace: metrics.Namespace,
		Name:      "access_tokens",
		Help:      "The number of access tokens by state",
	}, []string{"state"}, func() []metricValue {
		active, expired, err := data.CountAccessTokens(db, time.Now())
		if err != nil {
			logging.Warnf("access tokens metric: %v", err)
			return []metricValue{}
		}

		return []metricValue{
			{Value: float64(active), LabelValues: []string{"active"}},
			{Value: float64(expired), LabelValues: []string{"expired"}},
		}
	}))

	registry.MustRegister(newGaugeCollector(prometheus.Opts{
		Namespace: metrics.Namespace,
		Name:      "contents",
		Help:      "The number of content items by bundle and status",
	}, []string{"bundle", "published"}, func() []metricValue {
		var results []struct {
			Bundle    string
			Published bool
			Count     int
		}

		if err := db.Raw("SELECT bundle, published, COUNT(*) as count FROM contents WHERE deleted_at IS NULL GROUP BY bundle, published").Scan(&results).Error; err != nil {
			logging.Warnf("contents metric: %v", err)
			return []metricValue{}
		}

		values := make([]metricValue, 0, len(results))
		for _, result := range results {
			published := "false"
			if result.Published {
				published = "true"
			}

			values = append(values, metricValue{Value: float64(result.Count), LabelValues: []string{result.Bundle, published}})
		}

		return values
	}))

	return registry
}
