package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hejijunhao/labelprep/internal/config"
	"github.com/hejijunhao/labelprep/internal/engine/taxonomy"
	"github.com/hejijunhao/labelprep/internal/logging"
	"github.com/hejijunhao/labelprep/internal/source"
	"github.com/hejijunhao/labelprep/internal/source/httpclient"

	// Register input formats.
	_ "github.com/hejijunhao/labelprep/internal/source/csvfile"
	_ "github.com/hejijunhao/labelprep/internal/source/jsonl"
	_ "github.com/hejijunhao/labelprep/internal/source/xlsx"

	// Register output sinks.
	_ "github.com/hejijunhao/labelprep/internal/output/csvfile"
	_ "github.com/hejijunhao/labelprep/internal/output/file"
	_ "github.com/hejijunhao/labelprep/internal/output/sqlite"
	_ "github.com/hejijunhao/labelprep/internal/output/stdout"
	_ "github.com/hejijunhao/labelprep/internal/output/xlsx"
)

// app carries state shared by all subcommands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "labelprep:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: zap.NewNop()}

	var (
		dataDir   string
		taxPath   string
		exclude   string
		workers   int
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "labelprep",
		Short: "Normalize content-safety annotations and build stratified splits",
		Long: `labelprep turns free-form multi-label annotations into canonical label
codes and splits the labeled records into train, validation and test sets
that preserve each label's proportion.

Settings come from LABELPREP_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				a.cfg.DataDir = dataDir
			}
			if flags.Changed("taxonomy") {
				a.cfg.Engine.TaxonomyPath = taxPath
			}
			if flags.Changed("exclude") {
				a.cfg.Engine.Exclude = exclude
			}
			if flags.Changed("workers") {
				a.cfg.Engine.Workers = workers
			}
			if flags.Changed("log-level") {
				a.cfg.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				a.cfg.Log.Format = logFormat
			}
			if err := applyCommandFlags(cmd, &a.cfg); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.logger = logging.NewWithWriter(a.stderr, a.cfg.Log.Format, logging.ParseLevel(a.cfg.Log.Level))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&dataDir, "data-dir", "", "base directory for relative paths (env LABELPREP_DATA_DIR)")
	pf.StringVar(&taxPath, "taxonomy", "", "taxonomy YAML file; built-in when empty (env LABELPREP_TAXONOMY)")
	pf.StringVar(&exclude, "exclude", "", "comma-separated label codes to drop (env LABELPREP_EXCLUDE)")
	pf.IntVar(&workers, "workers", 0, "normalization workers (env LABELPREP_WORKERS)")
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (env LABELPREP_LOG_LEVEL)")
	pf.StringVar(&logFormat, "log-format", "console", "console or json (env LABELPREP_LOG_FORMAT)")

	root.AddCommand(
		newNormalizeCmd(a),
		newSplitCmd(a),
		newParseCmd(a),
		newTaxonomyCmd(a),
	)
	return root
}

func (a *app) taxonomy() (*taxonomy.Taxonomy, error) {
	if path := a.cfg.Engine.TaxonomyPath; path != "" {
		return taxonomy.Load(a.cfg.Resolve(path))
	}
	return taxonomy.Default()
}

func (a *app) loader() *source.Loader {
	return source.NewLoader(httpclient.New(
		httpclient.WithToken(a.cfg.HTTP.Token),
		httpclient.WithTimeout(a.cfg.HTTP.Timeout),
	))
}

func (a *app) sourceOptions() source.Options {
	return source.Options{Sheet: a.cfg.Input.Sheet, Encoding: a.cfg.Input.Encoding}
}

func (a *app) columns() source.Columns {
	return source.Columns{ID: a.cfg.Input.IDColumn, Text: a.cfg.Input.TextColumn, Label: a.cfg.Input.LabelColumn}
}
