package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/engine"
	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/formatter"
	"github.com/faildex/faildex/internal/logger"
	"github.com/faildex/faildex/internal/similarity"
)

func newRankCommand() *cobra.Command {
	var (
		flags      analyzeFlags
		issuesPath string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "rank [log-file...]",
		Short: "Rank candidate issues against failure signatures",
		Long: `Extract the failure signature from each log and rank the candidate
issues by how well they match it. With more than one log, files are
processed concurrently.

The issues file is JSON: either an array of issues or an object with an
"issues" key. Each issue carries id, summary and optionally description,
status, resolution, labels, comments and updated timestamps.

Examples:
  faildex rank --issues backlog.json run.log
  faildex rank --issues backlog.json --top 5 run1.log run2.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(args, issuesPath, top, &flags)
		},
	}

	cmd.Flags().StringVarP(&issuesPath, "issues", "i", "", "JSON file with candidate issues (required)")
	cmd.Flags().IntVar(&top, "top", 0, "limit reported matches (0 uses the configured limit)")
	cmd.Flags().StringVar(&flags.suite, "suite", "", "suite name hint")
	cmd.Flags().StringVar(&flags.test, "test", "", "test name hint")
	cmd.Flags().StringVar(&flags.tool, "tool", "", "tool name hint")
	cmd.Flags().IntVar(&flags.maxLines, "max-lines", 0, "stop scanning after this many lines")
	cmd.Flags().Int64Var(&flags.endsOnly, "ends-only", 0, "scan only the first and last N bytes")
	_ = cmd.MarkFlagRequired("issues")

	return cmd
}

func runRank(logs []string, issuesPath string, top int, flags *analyzeFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("rank")

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	issues, err := readIssues(issuesPath)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return fmt.Errorf("issues file %s contains no candidates", issuesPath)
	}
	log.Debug("loaded candidate issues", logger.Count(len(issues)))

	if top <= 0 {
		top = cfg.Ranking.Top
	}
	f, err := newFormatter(cfg)
	if err != nil {
		return err
	}
	opts := scanOptions(cfg, flags)

	ctx, stop := contextWithSignals()
	defer stop()

	if len(logs) == 1 {
		sig, err := eng.AnalyzeFile(ctx, logs[0], opts)
		switch {
		case errors.Is(err, extractor.ErrNoSignature):
			out, ferr := f.Format(&formatter.Report{LogPath: logs[0]})
			if ferr != nil {
				return ferr
			}
			if werr := writeOutput(out); werr != nil {
				return werr
			}
			return fmt.Errorf("no failure signature found in %s", logs[0])
		case err != nil:
			return err
		}
		matches, skipped := eng.Rank(sig, issues)
		return emitReport(f, logs[0], sig, matches, issues, skipped, top)
	}

	return runRankBatch(ctx, eng, f, logs, issues, opts, top, log)
}

// runRankBatch fans multiple logs through the engine's worker pool and
// prints one report per log.
func runRankBatch(ctx context.Context, eng *engine.Engine, f formatter.Formatter, logs []string, issues []similarity.CandidateIssue, opts extractor.Options, top int, log *logger.Logger) error {
	items := make([]engine.BatchItem, 0, len(logs))
	for _, path := range logs {
		items = append(items, engine.BatchItem{LogPath: path, Options: opts, Issues: issues})
	}

	results, err := eng.RankBatch(ctx, items)
	if err != nil {
		return err
	}

	failures := 0
	for _, res := range results {
		path := logs[res.Index]
		switch {
		case res.Err != nil:
			log.Error("scan failed", logger.F("log", path), logger.Err(res.Err))
			failures++
			continue
		case res.NoSignature:
			log.Warn("no failure signature found", logger.F("log", path))
			failures++
		}
		if err := emitReport(f, path, res.Signature, res.Matches, issues, res.Skipped, top); err != nil {
			return err
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d logs produced no ranked matches", failures, len(logs))
	}
	return nil
}

// emitReport trims matches to the reporting limit and prints the report.
func emitReport(f formatter.Formatter, logPath string, sig *extractor.FailureSignature, matches []similarity.MatchResult, issues []similarity.CandidateIssue, skipped, top int) error {
	if top > 0 && len(matches) > top {
		matches = matches[:top]
	}
	out, err := f.Format(&formatter.Report{
		LogPath:   logPath,
		Signature: sig,
		Matches:   matches,
		Issues:    issues,
		Skipped:   skipped,
	})
	if err != nil {
		return err
	}
	return writeOutput(out)
}
