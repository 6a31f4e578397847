package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_stories_generated_total",
			Help: "Total number of generated stories by strategy.",
		},
		[]string{"strategy"},
	)

	pdfUploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storybook_pdf_uploads_total",
		Help: "Total number of uploaded PDF files.",
	})
)
