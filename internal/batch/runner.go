// Package batch compresses many Java files in parallel and summarises the
// corpus.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/astdigest/internal/engine"
)

// Output file suffixes.
const (
	DigestSuffix = ".digest.json"
	FramedSuffix = ".digest.b64"
)

// Options configures a Runner.
type Options struct {
	Engine  engine.Options
	Format  engine.Format
	Frame   engine.Frame
	Workers int // 0 means one per CPU

	// Root anchors OutputDir-relative paths.
	Root      string
	OutputDir string
	// Write stores each document next to its source or under OutputDir.
	Write bool
}

// Result is the outcome for one file.
type Result struct {
	Path       string
	OutputPath string
	Output     []byte
	Summary    FileSummary
	BytesIn    int64
	BytesOut   int64
	Cached     bool
	Duration   time.Duration
	Err        error
}

// Report is the outcome of a run. Results follow the order of the input.
type Report struct {
	RunID   string
	Results []Result
	Summary CorpusSummary
	Cache   CacheStats
}

// Runner fans files out over a bounded set of workers, each owning its own
// engine.
type Runner struct {
	opts        Options
	log         *zap.Logger
	cache       *Cache
	metrics     *Metrics
	fingerprint uint64
}

// NewRunner creates a runner. cache may be nil.
func NewRunner(opts Options, cache *Cache, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Format == "" {
		opts.Format = engine.FormatJSON
	}
	if opts.Frame == "" {
		opts.Frame = engine.FrameNone
	}
	return &Runner{
		opts:        opts,
		log:         log,
		cache:       cache,
		metrics:     NewMetrics(),
		fingerprint: Fingerprint(opts.Engine, opts.Format, opts.Frame),
	}
}

// Metrics returns the runner's metrics.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run compresses files. A failing file is recorded in its Result and never
// stops the others; only context cancellation aborts the run. progress, when
// set, is called once per finished file, never concurrently.
func (r *Runner) Run(ctx context.Context, files []string, progress func(Result)) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With(zap.String("run_id", runID))

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, len(files)))

	engines := make(chan *engine.Engine, workers)
	for range workers {
		engines <- engine.New(r.opts.Engine, log)
	}

	results := make([]Result, len(files))
	var progressMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := <-engines
			defer func() { engines <- e }()

			res := r.process(gctx, e, path)
			results[i] = res
			r.metrics.observe(res)
			if res.Err != nil {
				log.Warn("file failed", zap.String("file", path), zap.Error(res.Err))
			}

			if progress != nil {
				progressMu.Lock()
				progress(res)
				progressMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s: %w", runID, err)
	}

	summary := Reduce(runID, results)
	summary.Duration = time.Since(start)
	log.Info("batch complete",
		zap.Int("files", summary.Files),
		zap.Int("failures", summary.Failures),
		zap.Int("cached", summary.Cached),
		zap.Int64("bytes_in", summary.BytesIn),
		zap.Int64("bytes_out", summary.BytesOut),
		zap.Duration("duration", summary.Duration))

	return &Report{
		RunID:   runID,
		Results: results,
		Summary: summary,
		Cache:   r.cache.Stats(),
	}, nil
}

func (r *Runner) process(ctx context.Context, e *engine.Engine, path string) Result {
	start := time.Now()
	res := Result{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	res.BytesIn = int64(len(src))

	key := ContentKey(src, r.fingerprint)
	if entry, ok := r.cache.Get(key); ok {
		res.Cached = true
		res.Output = entry.Output
		res.Summary = entry.Summary
	} else {
		doc, err := e.CompressSource(ctx, src)
		if err != nil {
			res.Err = fmt.Errorf("compress %s: %w", path, err)
			return res
		}
		out, err := e.Encode(doc, r.opts.Format)
		if err != nil {
			res.Err = fmt.Errorf("encode %s: %w", path, err)
			return res
		}
		if out, err = engine.ApplyFrame(out, r.opts.Frame); err != nil {
			res.Err = fmt.Errorf("frame %s: %w", path, err)
			return res
		}
		res.Output = out
		res.Summary = Summarize(doc)
		r.cache.Set(key, &Entry{Output: out, Summary: res.Summary})
	}
	res.BytesOut = int64(len(res.Output))

	if r.opts.Write {
		res.OutputPath = r.OutputPath(path)
		if err := writeFile(res.OutputPath, res.Output); err != nil {
			res.Err = err
			return res
		}
	}

	res.Duration = time.Since(start)
	return res
}

// OutputPath returns where the runner writes the document for file.
func (r *Runner) OutputPath(file string) string {
	return OutputPath(r.opts.Root, r.opts.OutputDir, file, r.opts.Frame)
}

// OutputPath returns where the document for file is written: next to the
// file when outDir is empty, otherwise at the same relative path under outDir.
func OutputPath(root, outDir, file string, frame engine.Frame) string {
	suffix := DigestSuffix
	if frame == engine.FrameGzipBase64 {
		suffix = FramedSuffix
	}
	if outDir == "" {
		return file + suffix
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(file)
	}
	return filepath.Join(outDir, rel) + suffix
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
