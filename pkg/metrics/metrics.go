// Package metrics exposes Prometheus counters for the site's write paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_article_views_total",
		Help: "Article view increments that were persisted.",
	})

	Publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_publish_total",
		Help: "Document publish attempts by result (ok, save_error, generate_error).",
	}, []string{"result"})

	PagesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_pages_generated_total",
		Help: "Static article pages written.",
	})

	OpenEditors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blog_open_editors",
		Help: "Admin sessions holding an editor buffer.",
	})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_uploads_total",
		Help: "Resource uploads by result.",
	}, []string{"result"})
)
