package catalogue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platfinder_refresh_total",
		Help: "Catalogue refreshes by outcome",
	}, []string{"catalogue", "source"})
	uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "platfinder_uploads_total",
		Help: "Image uploads by outcome",
	}, []string{"catalogue", "result"})
	totalEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "platfinder_entries_total",
		Help: "The number of entries in the current snapshot",
	}, []string{"catalogue"})
)
