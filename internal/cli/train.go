package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/config"
	"github.com/faildex/faildex/internal/feedback"
	"github.com/faildex/faildex/internal/logger"
)

func newTrainCommand() *cobra.Command {
	var (
		storePath string
		modelPath string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the relevance model from recorded feedback",
		Long: `Fit the relevance model on the recorded triage feedback and save the
artifact for future rank runs.

Training is skipped, not failed, when there is too little feedback or
all of it carries the same label; the previous artifact is left intact.

Examples:
  faildex train
  faildex train --store ./feedback.db --model ./relevance.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(storePath, modelPath)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "feedback database path (defaults to the configured store)")
	cmd.Flags().StringVar(&modelPath, "model", "", "output model path (defaults to the configured artifact)")

	return cmd
}

func runTrain(storePath, modelPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("train")

	if storePath == "" {
		storePath = config.ExpandPath(cfg.Feedback.StorePath)
	}
	if modelPath == "" {
		modelPath = config.ExpandPath(cfg.Feedback.ModelPath)
	}

	store, err := feedback.OpenStore(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := contextWithSignals()
	defer stop()

	records, err := store.List(ctx, 0)
	if err != nil {
		return err
	}
	log.Debug("loaded feedback", logger.Count(len(records)))

	model, skip, err := feedback.Train(records)
	if err != nil {
		return err
	}
	if skip != feedback.SkipNone {
		switch skip {
		case feedback.SkipTooFewRecords:
			fmt.Printf("training skipped: %d feedback record(s), need at least %d\n",
				len(records), feedback.MinTrainRecords)
		case feedback.SkipSingleClass:
			fmt.Println("training skipped: feedback contains only one label, need both relevant and irrelevant examples")
		}
		return nil
	}

	if err := model.Save(modelPath); err != nil {
		return err
	}
	fmt.Printf("trained on %d record(s), holdout accuracy %.2f, saved to %s\n",
		model.Samples, model.Accuracy, modelPath)
	return nil
}
