package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Subsystem: "assistant",
		Name:      "questions_total",
		Help:      "Questions answered, labeled by the path that produced the answer.",
	}, []string{"path"})

	llmFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hisab",
		Subsystem: "assistant",
		Name:      "llm_failures_total",
		Help:      "LLM calls that failed and triggered the deterministic fallback.",
	}, []string{"stage"})
)
