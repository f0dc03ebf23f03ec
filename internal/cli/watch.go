package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/config"
	"github.com/mvp-joe/astdigest/internal/logging"
	"github.com/mvp-joe/astdigest/internal/watcher"
)

var (
	watchOpts     batchFlags
	watchDebounce time.Duration
	watchNoInit   bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep digests up to date as Java files change",
	Long: `Watch compresses the directory once, then recompresses each Java file after
it changes. Changes are batched until the directory has been quiet for the
debounce period. Digests of deleted files are removed.

Examples:
  astdigest watch
  astdigest watch --debounce 2s --output-dir build/digests ./src
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

		return runWatch(ctx, cfg, log, root, watchOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	f := watchCmd.Flags()
	f.StringVarP(&watchOpts.level, "level", "l", "", "aggregation level: low, medium or high (default from config)")
	f.StringVar(&watchOpts.frame, "frame", "", "output frame: none or gzip+base64 (default from config)")
	f.BoolVar(&watchOpts.noKeyMapping, "no-key-mapping", false, "keep long document keys")
	f.StringVarP(&watchOpts.outputDir, "output-dir", "o", "", "write digests under this directory (default: next to each source)")
	f.IntVarP(&watchOpts.workers, "workers", "w", 0, "parallel workers (default from config, 0 = one per CPU)")
	f.BoolVarP(&watchOpts.quiet, "quiet", "q", false, "disable the initial progress bar and summary")
	f.DurationVar(&watchDebounce, "debounce", 0, "quiet period before recompressing (default from config)")
	f.BoolVar(&watchNoInit, "no-initial", false, "skip the initial full compression")
}

func runWatch(ctx context.Context, cfg *config.Config, log *zap.Logger, root string, flags batchFlags, out io.Writer) error {
	if !watchNoInit {
		if _, err := runBatch(ctx, cfg, log, root, flags, out); err != nil {
			log.Warn("initial compression incomplete", zap.Error(err))
		}
	}

	discovery, runner, cache, err := newRunner(cfg, log, root, flags)
	if err != nil {
		return err
	}
	defer cache.Close()

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	if watchDebounce > 0 {
		debounce = watchDebounce
	}

	if !flags.quiet {
		fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", root)
	}
	return watcher.Run(ctx, watcher.NewRecompressor(runner, discovery, log), debounce)
}
