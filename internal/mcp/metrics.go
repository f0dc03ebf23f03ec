package mcp

import (
	"sort"
	"sync"
	"time"
)

// CallMetrics tracks tool calls served by the MCP server.
// All methods are safe for concurrent use.
type CallMetrics struct {
	mu    sync.RWMutex
	tools map[string]*toolCounters
}

type toolCounters struct {
	calls        int64
	failures     int64
	lastCall     time.Time
	lastDuration time.Duration
	lastError    string
}

// ToolSnapshot is an immutable view of one tool's counters.
type ToolSnapshot struct {
	Tool         string        `json:"tool"`
	Calls        int64         `json:"calls"`
	Failures     int64         `json:"failures"`
	LastCall     time.Time     `json:"last_call"`
	LastDuration time.Duration `json:"last_duration_ns"`
	LastError    string        `json:"last_error,omitempty"`
}

// NewCallMetrics creates empty call metrics.
func NewCallMetrics() *CallMetrics {
	return &CallMetrics{tools: make(map[string]*toolCounters)}
}

// Record records the outcome of one call. A nil error counts as success.
func (m *CallMetrics) Record(tool string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.tools[tool]
	if !ok {
		c = &toolCounters{}
		m.tools[tool] = c
	}
	c.calls++
	c.lastCall = time.Now()
	c.lastDuration = duration
	if err != nil {
		c.failures++
		c.lastError = err.Error()
	} else {
		c.lastError = ""
	}
}

// Snapshot returns the counters of every tool called so far, by tool name.
func (m *CallMetrics) Snapshot() []ToolSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ToolSnapshot, 0, len(m.tools))
	for name, c := range m.tools {
		out = append(out, ToolSnapshot{
			Tool:         name,
			Calls:        c.calls,
			Failures:     c.failures,
			LastCall:     c.lastCall,
			LastDuration: c.lastDuration,
			LastError:    c.lastError,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool < out[j].Tool })
	return out
}
