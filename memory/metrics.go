package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "multiai",
		Name:      "memory_records",
		Help:      "Memory records currently held per participant.",
	},
	[]string{"participant"},
)
