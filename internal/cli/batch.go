package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/batch"
	"github.com/mvp-joe/astdigest/internal/config"
	"github.com/mvp-joe/astdigest/internal/logging"
)

// batchFlags are the per-invocation overrides of the batch command.
type batchFlags struct {
	compressFlags
	outputDir   string
	workers     int
	quiet       bool
	dryRun      bool
	metricsFile string
}

var batchOpts batchFlags

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Compress every Java file under a directory",
	Long: `Batch discovers Java files under a directory (default: the current one),
compresses them in parallel and writes one digest per file, either next to the
source or under --output-dir. A failing file is reported and skipped.

Examples:
  # Digest the project next to each source file
  astdigest batch

  # Mirror digests into a separate tree and export metrics
  astdigest batch --output-dir build/digests --metrics-file digest.prom ./src

  # Only print the corpus summary
  astdigest batch --dry-run
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		root, err := targetDir(args)
		if err != nil {
			return err
		}
		cfg, log, err := setup(root)
		if err != nil {
			return err
		}
		defer logging.Sync(log)

		_, err = runBatch(ctx, cfg, log, root, batchOpts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	f := batchCmd.Flags()
	f.StringVarP(&batchOpts.level, "level", "l", "", "aggregation level: low, medium or high (default from config)")
	f.StringVarP(&batchOpts.format, "format", "f", "", "output format: json or json-indent (default from config)")
	f.StringVar(&batchOpts.frame, "frame", "", "output frame: none or gzip+base64 (default from config)")
	f.BoolVar(&batchOpts.noKeyMapping, "no-key-mapping", false, "keep long document keys")
	f.BoolVar(&batchOpts.noTree, "no-tree", false, "omit the compact syntax tree")
	f.StringVarP(&batchOpts.outputDir, "output-dir", "o", "", "write digests under this directory (default: next to each source)")
	f.IntVarP(&batchOpts.workers, "workers", "w", 0, "parallel workers (default from config, 0 = one per CPU)")
	f.BoolVarP(&batchOpts.quiet, "quiet", "q", false, "disable progress bars and the summary")
	f.BoolVar(&batchOpts.dryRun, "dry-run", false, "compress without writing digests")
	f.StringVar(&batchOpts.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
}

// targetDir returns the absolute directory named by args, or the working directory.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return abs, nil
}

// newRunner builds discovery and a runner for root from cfg and flags.
func newRunner(cfg *config.Config, log *zap.Logger, root string, flags batchFlags) (*batch.Discovery, *batch.Runner, *batch.Cache, error) {
	opts, format, frame, err := applyCompressFlags(cfg, flags.compressFlags)
	if err != nil {
		return nil, nil, nil, err
	}

	discovery, err := batch.NewDiscovery(root, cfg.Batch.Include, cfg.Batch.Exclude, cfg.Batch.RespectGitignore)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid file patterns: %w", err)
	}
	cache, err := batch.NewCache(cfg.Batch.CacheSize)
	if err != nil {
		return nil, nil, nil, err
	}

	workers := cfg.Batch.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}
	outputDir := cfg.Batch.OutputDir
	if flags.outputDir != "" {
		outputDir = flags.outputDir
	}
	if outputDir != "" && !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	runner := batch.NewRunner(batch.Options{
		Engine:    opts,
		Format:    format,
		Frame:     frame,
		Workers:   workers,
		Root:      root,
		OutputDir: outputDir,
		Write:     !flags.dryRun,
	}, cache, log)
	return discovery, runner, cache, nil
}

func runBatch(ctx context.Context, cfg *config.Config, log *zap.Logger, root string, flags batchFlags, out io.Writer) (*batch.Report, error) {
	discovery, runner, cache, err := newRunner(cfg, log, root, flags)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	files, err := discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	progress := newBatchProgress(out, flags.quiet)
	progress.OnDiscoveryComplete(root, len(files))

	report, err := runner.Run(ctx, files, progress.OnFileProcessed)
	if err != nil {
		return nil, err
	}
	progress.OnComplete(report)

	if flags.metricsFile != "" {
		if err := runner.Metrics().WriteTextfile(flags.metricsFile); err != nil {
			return report, fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if report.Summary.Failures > 0 {
		return report, fmt.Errorf("%d of %d files failed", report.Summary.Failures, report.Summary.Files)
	}
	return report, nil
}
