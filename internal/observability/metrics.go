// Package observability owns the process-wide Prometheus collectors.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	problemsTotal     *prometheus.CounterVec
	generationErrors  *prometheus.CounterVec
	samplerAttempts   *prometheus.HistogramVec
	toolRequestsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the collectors exactly once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		problemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examgen_problems_generated_total",
			Help: "Total number of problems generated.",
		}, []string{"kind"})

		generationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examgen_generation_errors_total",
			Help: "Total number of failed generation attempts.",
		}, []string{"kind"})

		samplerAttempts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examgen_sampler_attempts",
			Help:    "Rejection-sampling draws needed per accepted coefficient tuple.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}, []string{"kind"})

		toolRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examgen_tool_requests_total",
			Help: "Total number of tool calls served.",
		}, []string{"tool", "status"})

		prometheus.MustRegister(problemsTotal, generationErrors, samplerAttempts, toolRequestsTotal)
	})
}

// ProblemsGenerated counts generated problems by kind.
func ProblemsGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return problemsTotal
}

// GenerationErrors counts failed generations by kind.
func GenerationErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return generationErrors
}

// SamplerAttempts observes draws per accepted sample.
func SamplerAttempts() *prometheus.HistogramVec {
	RegisterMetrics()
	return samplerAttempts
}

// ToolRequests counts tool calls by tool name and outcome.
func ToolRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return toolRequestsTotal
}
