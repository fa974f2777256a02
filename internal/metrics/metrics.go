package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parser_task_run_duration_seconds",
			Help:    "Duration of each parse task run in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900},
		},
	)
	HhRequestDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "parser_hh_request_duration_seconds",
			Help:       "Duration of requests to hh.ru API.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"endpoint"},
	)
	PagesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_pages_total",
			Help: "Total number of search pages requested, by result.",
		},
		[]string{"result"},
	)
	VacanciesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parser_vacancies_total",
			Help: "Total number of processed vacancies, by outcome.",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default prometheus registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(RunDuration)
		prometheus.MustRegister(HhRequestDuration)
		prometheus.MustRegister(PagesCounter)
		prometheus.MustRegister(VacanciesCounter)
	})
}
