package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/config"
	"github.com/faildex/faildex/internal/feedback"
	"github.com/faildex/faildex/internal/textnorm"
	"github.com/faildex/faildex/internal/ui"
)

func newFeedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record and inspect triage feedback",
		Long: `Capture which ranked candidates actually explained a failure. The
recorded decisions train the relevance model used to re-rank future
candidates.`,
	}

	cmd.AddCommand(newFeedbackReviewCommand())
	cmd.AddCommand(newFeedbackRecordCommand())
	cmd.AddCommand(newFeedbackListCommand())

	return cmd
}

func openConfiguredStore(storePath string) (*feedback.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if storePath == "" {
		storePath = config.ExpandPath(cfg.Feedback.StorePath)
	}
	return feedback.OpenStore(storePath)
}

func newFeedbackReviewCommand() *cobra.Command {
	var (
		flags      analyzeFlags
		issuesPath string
		storePath  string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "review [log-file]",
		Short: "Interactively review ranked candidates",
		Long: `Rank candidates for a failure log and step through them in an
interactive screen, marking each as relevant or not.

Examples:
  faildex feedback review --issues backlog.json run.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedbackReview(args[0], issuesPath, storePath, top, &flags)
		},
	}

	cmd.Flags().StringVarP(&issuesPath, "issues", "i", "", "JSON file with candidate issues (required)")
	cmd.Flags().StringVar(&storePath, "store", "", "feedback database path")
	cmd.Flags().IntVar(&top, "top", 0, "limit reviewed matches")
	cmd.Flags().StringVar(&flags.test, "test", "", "test name hint")
	_ = cmd.MarkFlagRequired("issues")

	return cmd
}

func runFeedbackReview(logPath, issuesPath, storePath string, top int, flags *analyzeFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("feedback")

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	issues, err := readIssues(issuesPath)
	if err != nil {
		return err
	}

	ctx, stop := contextWithSignals()
	defer stop()

	sig, err := eng.AnalyzeFile(ctx, logPath, scanOptions(cfg, flags))
	if err != nil {
		return err
	}
	matches, _ := eng.Rank(sig, issues)
	if top <= 0 {
		top = cfg.Ranking.Top
	}
	if top > 0 && len(matches) > top {
		matches = matches[:top]
	}

	if storePath == "" {
		storePath = config.ExpandPath(cfg.Feedback.StorePath)
	}
	store, err := feedback.OpenStore(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	saved, err := ui.RunReview(sig, matches, issues, store)
	if err != nil {
		return err
	}
	fmt.Printf("recorded %d decision(s)\n", saved)
	return nil
}

func newFeedbackRecordCommand() *cobra.Command {
	var (
		storePath string
		test      string
		signature string
		issueID   string
		summary   string
		relevant  bool
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one relevance decision",
		Long: `Record a single relevance decision without the interactive screen,
for scripted triage pipelines.

Examples:
  faildex feedback record --test test_dma --issue PROJ-42 --relevant \
      --signature "Segmentation fault in dma_engine"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := contextWithSignals()
			defer stop()

			rec := feedback.Record{
				Test:              test,
				Signature:         signature,
				SignatureKeywords: textnorm.Keywords(signature, 10),
				IssueID:           issueID,
				IssueSummary:      summary,
				Relevant:          relevant,
			}
			id, err := store.Add(ctx, rec)
			if err != nil {
				return err
			}
			fmt.Printf("recorded feedback #%d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "feedback database path")
	cmd.Flags().StringVar(&test, "test", "", "test name (required)")
	cmd.Flags().StringVar(&signature, "signature", "", "failure signature text")
	cmd.Flags().StringVar(&issueID, "issue", "", "issue identifier (required)")
	cmd.Flags().StringVar(&summary, "summary", "", "issue summary")
	cmd.Flags().BoolVar(&relevant, "relevant", false, "the issue explains the failure")
	_ = cmd.MarkFlagRequired("test")
	_ = cmd.MarkFlagRequired("issue")

	return cmd
}

func newFeedbackListCommand() *cobra.Command {
	var (
		storePath string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openConfiguredStore(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := contextWithSignals()
			defer stop()

			records, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no feedback recorded")
				return nil
			}
			for _, rec := range records {
				mark := "-"
				if rec.Relevant {
					mark = "+"
				}
				fmt.Printf("%5d  %s  %s  %-12s  %s\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02"), mark, rec.IssueID, rec.Test)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "feedback database path")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to list (0 = all)")

	return cmd
}
