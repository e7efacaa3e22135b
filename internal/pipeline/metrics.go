package pipeline

import (
	"fmt"
	"strings"
	"sync/atomic"

	"reel-transcribe-go/internal/types"
)

var failureKinds = []types.Kind{
	types.KindValidation,
	types.KindConfiguration,
	types.KindResolution,
	types.KindFetch,
	types.KindExtraction,
	types.KindTranscription,
	types.KindUnknown,
}

// Metrics tracks run counters for one Pipeline.
type Metrics struct {
	Runs      atomic.Int64
	Succeeded atomic.Int64
	failures  map[types.Kind]*atomic.Int64
}

func NewMetrics() *Metrics {
	m := &Metrics{failures: make(map[types.Kind]*atomic.Int64, len(failureKinds))}
	for _, k := range failureKinds {
		m.failures[k] = new(atomic.Int64)
	}
	return m
}

func (m *Metrics) recordFailure(k types.Kind) {
	c, ok := m.failures[k]
	if !ok {
		c = m.failures[types.KindUnknown]
	}
	c.Add(1)
}

// Failures returns the failure count for one kind.
func (m *Metrics) Failures(k types.Kind) int64 {
	if c, ok := m.failures[k]; ok {
		return c.Load()
	}
	return 0
}

// Format renders the counters as "name value" lines.
func (m *Metrics) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pipeline_runs %d\n", m.Runs.Load())
	fmt.Fprintf(&sb, "pipeline_succeeded %d\n", m.Succeeded.Load())
	for _, k := range failureKinds {
		fmt.Fprintf(&sb, "pipeline_failed{kind=%q} %d\n", string(k), m.failures[k].Load())
	}
	return sb.String()
}
