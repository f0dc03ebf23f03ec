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

	"github.com/mvp-joe/astdigest/internal/config"
	"github.com/mvp-joe/astdigest/internal/engine"
	"github.com/mvp-joe/astdigest/internal/logging"
)

// compressFlags are the per-invocation overrides of the compress command.
type compressFlags struct {
	level        string
	format       string
	frame        string
	noKeyMapping bool
	noTree       bool
	output       string
}

var compressOpts compressFlags

// compressCmd represents the compress command
var compressCmd = &cobra.Command{
	Use:   "compress <file.java>",
	Short: "Compress one Java file and print its digest",
	Long: `Compress parses a single Java file and writes its digest to stdout, or to
the file named by --output.

Examples:
  # Digest with the configured defaults
  astdigest compress src/main/java/OrderRepository.java

  # Most aggressive aggregation, readable keys, indented JSON
  astdigest compress --level high --no-key-mapping --format json-indent Order.java

  # Gzip and base64 frame the digest for transport
  astdigest compress --frame gzip+base64 -o Order.digest.b64 Order.java
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg, log, err := setup(root)
		if err != nil {
			return err
		}
		defer logging.Sync(log)

		return runCompress(ctx, cfg, log, args[0], compressOpts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(compressCmd)
	compressCmd.Flags().StringVarP(&compressOpts.level, "level", "l", "", "aggregation level: low, medium or high (default from config)")
	compressCmd.Flags().StringVarP(&compressOpts.format, "format", "f", "", "output format: json or json-indent (default from config)")
	compressCmd.Flags().StringVar(&compressOpts.frame, "frame", "", "output frame: none or gzip+base64 (default from config)")
	compressCmd.Flags().BoolVar(&compressOpts.noKeyMapping, "no-key-mapping", false, "keep long document keys")
	compressCmd.Flags().BoolVar(&compressOpts.noTree, "no-tree", false, "omit the compact syntax tree")
	compressCmd.Flags().StringVarP(&compressOpts.output, "output", "o", "", "write the digest to this file instead of stdout")
}

// applyCompressFlags overrides the configuration with command line flags.
func applyCompressFlags(cfg *config.Config, flags compressFlags) (engine.Options, engine.Format, engine.Frame, error) {
	if flags.level != "" {
		cfg.Compression.AggregationLevel = flags.level
	}
	if flags.format != "" {
		cfg.Output.Format = flags.format
	}
	if flags.frame != "" {
		cfg.Output.Frame = flags.frame
	}
	if flags.noKeyMapping {
		cfg.Compression.UseKeyMapping = false
	}
	if flags.noTree {
		cfg.Compression.IncludeTree = false
	}
	if err := config.Validate(cfg); err != nil {
		return engine.Options{}, "", "", err
	}

	format, frame, err := cfg.OutputFormat()
	if err != nil {
		return engine.Options{}, "", "", err
	}
	return cfg.EngineOptions(), format, frame, nil
}

func runCompress(ctx context.Context, cfg *config.Config, log *zap.Logger, path string, flags compressFlags, out io.Writer) error {
	opts, format, frame, err := applyCompressFlags(cfg, flags)
	if err != nil {
		return err
	}
	if filepath.Ext(path) != ".java" {
		return fmt.Errorf("%s is not a .java file", path)
	}

	e := engine.New(opts, log)
	doc, _, err := e.CompressFile(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	data, err := e.Encode(doc, format)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if data, err = engine.ApplyFrame(data, frame); err != nil {
		return err
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", flags.output, err)
		}
		log.Info("digest written", zap.String("file", path), zap.String("output", flags.output))
		return nil
	}

	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
