package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/astdigest/internal/batch"
)

// batchProgress reports batch progress with a progress bar.
type batchProgress struct {
	quiet  bool
	out    io.Writer
	bar    *progressbar.ProgressBar
	failed int
	cached int
}

// newBatchProgress creates a reporter writing to out. A quiet reporter
// prints nothing.
func newBatchProgress(out io.Writer, quiet bool) *batchProgress {
	return &batchProgress{quiet: quiet, out: out}
}

// OnDiscoveryComplete starts the bar for total files.
func (p *batchProgress) OnDiscoveryComplete(root string, total int) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "Compressing %s Java files under %s\n", formatNumber(total), root)
	if total == 0 {
		return
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Compressing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

// OnFileProcessed advances the bar. Calls are serialized by the runner.
func (p *batchProgress) OnFileProcessed(r batch.Result) {
	if r.Err != nil {
		p.failed++
	} else if r.Cached {
		p.cached++
	}
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// OnComplete prints the corpus summary.
func (p *batchProgress) OnComplete(report *batch.Report) {
	if p.quiet {
		return
	}
	if p.bar != nil {
		_ = p.bar.Finish()
	}

	s := report.Summary
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "✓ Compression complete: %s files in %.1fs (run %s)\n",
		formatNumber(s.Files), s.Duration.Seconds(), report.RunID)
	fmt.Fprintf(p.out, "  Failed:     %s\n", formatNumber(s.Failures))
	fmt.Fprintf(p.out, "  Cached:     %s\n", formatNumber(s.Cached))
	fmt.Fprintf(p.out, "  Classes:    %s\n", formatNumber(s.Classes))
	fmt.Fprintf(p.out, "  Methods:    %s\n", formatNumber(s.Methods))
	fmt.Fprintf(p.out, "  Complexity: mean %.2f, max %d\n", s.MeanComplexity, s.MaxComplexity)
	fmt.Fprintf(p.out, "  Size:       %s -> %s bytes (%.0f%%)\n",
		formatNumber(int(s.BytesIn)), formatNumber(int(s.BytesOut)), s.Ratio()*100)
	if len(s.Intents) > 0 {
		fmt.Fprintf(p.out, "  Intents:    %s\n", formatCounts(s.Intents))
	}
	if len(s.Responsibilities) > 0 {
		fmt.Fprintf(p.out, "  Classes by responsibility: %s\n", formatCounts(s.Responsibilities))
	}

	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(p.out, "  ✗ %v\n", r.Err)
		}
	}
}

// formatCounts renders counts as "a=3 b=1", largest first.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 && n > -1000 {
		return str
	}

	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return sign + result
}
