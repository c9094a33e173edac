package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeCanceled = "canceled"

	modeReactive = "reactive"
	modeDialogue = "dialogue"
)

var (
	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiai",
		Name:      "provider_calls_total",
		Help:      "Provider adapter calls by participant and outcome.",
	}, []string{"participant", "outcome"})

	providerCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multiai",
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of provider adapter calls.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"participant"})

	rounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multiai",
		Name:      "rounds_total",
		Help:      "Reactive rounds and dialogues by outcome.",
	}, []string{"mode", "outcome"})
)
