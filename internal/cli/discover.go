package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/learner"
	"github.com/faildex/faildex/internal/logger"
)

func newDiscoverCommand() *cobra.Command {
	var (
		minSupport    int
		maxCandidates int
		exportPath    string
	)

	cmd := &cobra.Command{
		Use:   "discover [log-file...]",
		Short: "Propose catalog rules from recurring error lines",
		Long: `Scan logs for matching error lines, cluster the recurring shapes and
propose generalized catalog rules for them.

With --export, the proposals are written as a rule file ready for review
and inclusion in a rules directory.

Examples:
  faildex discover nightly/*.log
  faildex discover --min-support 5 --export proposed.yaml run.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(args, minSupport, maxCandidates, exportPath)
		},
	}

	cmd.Flags().IntVar(&minSupport, "min-support", 0, "occurrences needed before proposing a rule")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", 0, "cap on proposed rules")
	cmd.Flags().StringVar(&exportPath, "export", "", "write proposals as a YAML rule file")

	return cmd
}

func runDiscover(logs []string, minSupport, maxCandidates int, exportPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("discover")

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := contextWithSignals()
	defer stop()

	var lines []string
	for _, path := range logs {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		hits, err := eng.ExtractAll(ctx, f, cfg.Scan.MaxHits)
		_ = f.Close()
		if err != nil {
			return err
		}
		log.Debug("scanned log", logger.F("log", path), logger.Count(len(hits)))
		for _, hit := range hits {
			lines = append(lines, hit.Line)
		}
	}

	opts := learner.Options{
		MinSupport:    cfg.Discovery.MinSupport,
		MaxCandidates: cfg.Discovery.MaxCandidates,
	}
	if minSupport > 0 {
		opts.MinSupport = minSupport
	}
	if maxCandidates > 0 {
		opts.MaxCandidates = maxCandidates
	}

	candidates := eng.Discover(lines, opts)
	log.Info("discovery finished",
		logger.F("lines", len(lines)), logger.F("candidates", len(candidates)))

	if exportPath != "" {
		doc, err := learner.ExportYAML(candidates)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportPath, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write proposals: %w", err)
		}
		fmt.Printf("wrote %d proposed rule(s) to %s\n", len(candidates), exportPath)
		return nil
	}

	f, err := newFormatter(cfg)
	if err != nil {
		return err
	}
	out, err := f.FormatCandidates(candidates)
	if err != nil {
		return err
	}
	return writeOutput(out)
}
