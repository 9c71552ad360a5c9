package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	InvoicesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acta_invoices_created_total",
		Help: "Invoices committed",
	})

	PDFRenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "acta_pdf_render_duration_seconds",
		Help:    "Time spent rendering invoice PDFs, excluding semaphore wait",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
	})

	PDFRendersInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "acta_pdf_renders_in_flight",
		Help: "PDF renders currently holding the semaphore",
	})

	// result is hit or miss.
	PDFCacheResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acta_pdf_cache_results_total",
		Help: "PDF cache lookups by result",
	}, []string{"result"})

	LogosCollected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acta_logos_collected_total",
		Help: "Unreferenced logo objects removed by the background job",
	})
)

var PDFCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "acta_pdf_cache_entries",
	Help: "Rendered invoice PDFs currently cached",
})
