package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/config"
	"github.com/faildex/faildex/internal/engine"
	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/formatter"
	"github.com/faildex/faildex/internal/logger"
)

type analyzeFlags struct {
	suite            string
	test             string
	tool             string
	maxLines         int
	endsOnly         int64
	warningsAsErrors bool
	allHits          bool
}

func newAnalyzeCommand() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [log-file]",
		Short: "Extract the failure signature from a log",
		Long: `Scan a failure log and report the line that best explains the
failure, classified against the rule catalog.

Reads from stdin when the file argument is "-" or omitted. A missing
log file degrades to a signature built from the test name, so triage
can proceed on keywords alone.

Examples:
  faildex analyze run.log
  faildex analyze --test test_dma_burst missing.log
  cat run.log | faildex analyze --ends-only 262144 -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.suite, "suite", "", "suite name hint")
	cmd.Flags().StringVar(&flags.test, "test", "", "test name hint, used for degraded signatures")
	cmd.Flags().StringVar(&flags.tool, "tool", "", "tool name hint")
	cmd.Flags().IntVar(&flags.maxLines, "max-lines", 0, "stop scanning after this many lines")
	cmd.Flags().Int64Var(&flags.endsOnly, "ends-only", 0, "scan only the first and last N bytes")
	cmd.Flags().BoolVar(&flags.warningsAsErrors, "warnings-as-errors", false, "promote warning rules from the start of the scan")
	cmd.Flags().BoolVar(&flags.allHits, "all", false, "list every matching error line instead of the best one")

	return cmd
}

func scanOptions(cfg *config.Config, flags *analyzeFlags) extractor.Options {
	opts := extractor.Options{
		MaxLines:         cfg.Scan.MaxLines,
		EndsOnly:         cfg.Scan.EndsOnly,
		Suite:            flags.suite,
		Test:             flags.test,
		Tool:             flags.tool,
		WarningsAsErrors: cfg.Rules.WarningsAsErrors || flags.warningsAsErrors,
	}
	if flags.maxLines > 0 {
		opts.MaxLines = flags.maxLines
		opts.EndsOnly = 0
	}
	if flags.endsOnly > 0 {
		opts.EndsOnly = flags.endsOnly
		opts.MaxLines = 0
	}
	return opts
}

func runAnalyze(args []string, flags *analyzeFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("analyze")

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	opts := scanOptions(cfg, flags)

	path := ""
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
	}

	if flags.allHits {
		return runExtractAll(eng, cfg, path)
	}

	var sig *extractor.FailureSignature
	ctx, stop := contextWithSignals()
	defer stop()
	if path == "" {
		sig, err = eng.Analyze(ctx, os.Stdin, opts)
	} else {
		sig, err = eng.AnalyzeFile(ctx, path, opts)
	}
	switch {
	case errors.Is(err, extractor.ErrNoSignature):
		log.Info("no error lines matched", logger.F("log", path))
	case err != nil:
		return err
	}

	f, err := newFormatter(cfg)
	if err != nil {
		return err
	}
	out, err := f.Format(&formatter.Report{LogPath: path, Signature: sig})
	if err != nil {
		return err
	}
	if err := writeOutput(out); err != nil {
		return err
	}
	if sig == nil {
		return fmt.Errorf("no failure signature found")
	}
	return nil
}

// runExtractAll lists every matching error line, the raw material for
// rule discovery.
func runExtractAll(eng *engine.Engine, cfg *config.Config, path string) error {
	src := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		src = f
	}

	ctx, stop := contextWithSignals()
	defer stop()
	hits, err := eng.ExtractAll(ctx, src, cfg.Scan.MaxHits)
	if err != nil {
		return err
	}
	for _, hit := range hits {
		fmt.Printf("%4d  L%-2d %-20s %s\n", hit.LineNumber, hit.Level, hit.Tag, hit.Line)
	}
	if len(hits) == 0 {
		fmt.Println("no matching error lines")
	}
	return nil
}
