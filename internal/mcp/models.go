package mcp

import (
	"github.com/mvp-joe/astdigest/internal/batch"
)

// Tool names.
const (
	CompressToolName = "compress_java"
	StatsToolName    = "digest_stats"
)

// DigestStatsResponse is the result of the digest_stats tool.
type DigestStatsResponse struct {
	Root     string              `json:"root"`
	Summary  batch.CorpusSummary `json:"summary"`
	Ratio    float64             `json:"ratio"`
	Failures []FileFailure       `json:"failures,omitempty"`
	Metrics  []MetricSample      `json:"metrics,omitempty"`
	Tools    []ToolSnapshot      `json:"tools,omitempty"`
}

// MetricSample is one series of the run's batch metrics.
type MetricSample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// FileFailure names a file that could not be compressed.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
