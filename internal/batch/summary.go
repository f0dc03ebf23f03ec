package batch

import (
	"time"

	"github.com/mvp-joe/astdigest/internal/engine"
)

// FileSummary is the per-file contribution to a corpus summary.
type FileSummary struct {
	Classes          int            `json:"classes"`
	Methods          int            `json:"methods"`
	Intents          map[string]int `json:"intents,omitempty"`
	Responsibilities map[string]int `json:"responsibilities,omitempty"`
	ComplexitySum    int            `json:"complexity_sum"`
	MaxComplexity    int            `json:"max_complexity"`
	Analyzed         int            `json:"analyzed"`
}

// Summarize extracts the corpus-relevant counts of one document.
func Summarize(doc *engine.Document) FileSummary {
	var s FileSummary
	if doc == nil {
		return s
	}
	for _, c := range doc.Structure.Classes {
		s.Classes++
		if c.Responsibility != "" {
			s.Responsibilities = incr(s.Responsibilities, c.Responsibility)
		}
		for _, m := range c.Methods {
			s.Methods++
			if m.Intent != "" {
				s.Intents = incr(s.Intents, m.Intent)
			}
		}
	}
	for _, ma := range doc.MethodAnalysis {
		s.Analyzed++
		s.ComplexitySum += ma.Complexity
		s.MaxComplexity = max(s.MaxComplexity, ma.Complexity)
	}
	return s
}

func incr(m map[string]int, key string) map[string]int {
	if m == nil {
		m = make(map[string]int)
	}
	m[key]++
	return m
}

// CorpusSummary aggregates a batch run.
type CorpusSummary struct {
	RunID            string         `json:"run_id"`
	Files            int            `json:"files"`
	Failures         int            `json:"failures"`
	Cached           int            `json:"cached"`
	Classes          int            `json:"classes"`
	Methods          int            `json:"methods"`
	Intents          map[string]int `json:"intents"`
	Responsibilities map[string]int `json:"responsibilities"`
	MeanComplexity   float64        `json:"mean_complexity"`
	MaxComplexity    int            `json:"max_complexity"`
	BytesIn          int64          `json:"bytes_in"`
	BytesOut         int64          `json:"bytes_out"`
	Duration         time.Duration  `json:"duration_ns"`
}

// Ratio returns output size as a fraction of input size.
func (c CorpusSummary) Ratio() float64 {
	if c.BytesIn == 0 {
		return 0
	}
	return float64(c.BytesOut) / float64(c.BytesIn)
}

// Reduce folds results into a summary. The input is not modified.
func Reduce(runID string, results []Result) CorpusSummary {
	cs := CorpusSummary{
		RunID:            runID,
		Intents:          map[string]int{},
		Responsibilities: map[string]int{},
	}
	var complexitySum, analyzed int
	for _, r := range results {
		cs.Files++
		cs.BytesIn += r.BytesIn
		if r.Err != nil {
			cs.Failures++
			continue
		}
		if r.Cached {
			cs.Cached++
		}
		cs.BytesOut += r.BytesOut
		cs.Classes += r.Summary.Classes
		cs.Methods += r.Summary.Methods
		for k, v := range r.Summary.Intents {
			cs.Intents[k] += v
		}
		for k, v := range r.Summary.Responsibilities {
			cs.Responsibilities[k] += v
		}
		complexitySum += r.Summary.ComplexitySum
		analyzed += r.Summary.Analyzed
		cs.MaxComplexity = max(cs.MaxComplexity, r.Summary.MaxComplexity)
	}
	if analyzed > 0 {
		cs.MeanComplexity = float64(complexitySum) / float64(analyzed)
	}
	return cs
}
