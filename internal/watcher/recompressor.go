package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/batch"
)

// Recompressor refreshes the digests of changed files.
type Recompressor struct {
	runner    *batch.Runner
	discovery *batch.Discovery
	log       *zap.Logger
}

// NewRecompressor creates a recompressor writing through runner. Only files
// selected by discovery are handled.
func NewRecompressor(runner *batch.Runner, discovery *batch.Discovery, log *zap.Logger) *Recompressor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recompressor{runner: runner, discovery: discovery, log: log}
}

// Filter selects the files this recompressor handles.
func (r *Recompressor) Filter() Filter {
	return r.discovery.MatchPath
}

// Handle compresses the files that still exist and removes the digests of
// deleted ones. The report is nil when nothing was compressed.
func (r *Recompressor) Handle(ctx context.Context, files []string) (*batch.Report, error) {
	var present []string
	for _, file := range files {
		if !r.discovery.MatchPath(file) {
			continue
		}
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			r.removeDigest(file)
			continue
		}
		present = append(present, file)
	}
	if len(present) == 0 {
		return nil, nil
	}

	return r.runner.Run(ctx, present, nil)
}

func (r *Recompressor) removeDigest(file string) {
	out := r.runner.OutputPath(file)
	err := os.Remove(out)
	switch {
	case err == nil:
		r.log.Info("digest removed", zap.String("file", file), zap.String("digest", out))
	case !errors.Is(err, fs.ErrNotExist):
		r.log.Warn("failed to remove digest", zap.String("digest", out), zap.Error(err))
	}
}

// Run watches the discovery root and recompresses changes until ctx is done.
func Run(ctx context.Context, r *Recompressor, debounce time.Duration) error {
	fw, err := NewFileWatcher([]string{r.discovery.Root()}, r.Filter(), WithDebounce(debounce), WithLogger(r.log))
	if err != nil {
		return err
	}
	defer fw.Stop()

	err = fw.Start(ctx, func(files []string) {
		report, err := r.Handle(ctx, files)
		if err != nil {
			r.log.Warn("recompression aborted", zap.Error(err))
			return
		}
		if report != nil {
			r.log.Info("recompressed",
				zap.Int("files", report.Summary.Files),
				zap.Int("failures", report.Summary.Failures))
		}
	})
	if err != nil {
		return err
	}

	r.log.Info("watching", zap.String("root", r.discovery.Root()), zap.Duration("debounce", debounce))
	<-ctx.Done()
	return nil
}
