// Package metrics exposes the pipeline's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChunkUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pilotforce_chunk_uploads_total",
		Help: "Chunk upload attempts by outcome.",
	}, []string{"outcome"})

	Reassemblies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pilotforce_reassemblies_total",
		Help: "Reassembly runs by outcome.",
	}, []string{"outcome"})

	ReassemblyBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pilotforce_reassembled_bytes_total",
		Help: "Total bytes written as merged objects.",
	})

	RecoveryProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pilotforce_recovery_probes_total",
		Help: "Recovery URL probes by result.",
	}, []string{"result"})
)
