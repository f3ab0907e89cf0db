package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/faildex/faildex/internal/catalog"
	"github.com/faildex/faildex/internal/logger"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"patterns"},
		Short:   "Manage classification rule catalogs",
		Long: `Manage the YAML rule catalogs used to classify log lines.

Rules come in three kinds: ignore rules suppress known noise, error
rules assign a severity level and tag, and warning rules only fire when
warnings are treated as errors.`,
	}

	cmd.AddCommand(newRulesListCommand())
	cmd.AddCommand(newRulesValidateCommand())
	cmd.AddCommand(newRulesWatchCommand())

	return cmd
}

func newRulesListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effective rule catalog",
		Long: `List every rule in the effective catalog: the builtin set plus any
configured rule directories, in classification order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList()
		},
	}
	return cmd
}

func runRulesList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	rules := cat.Rules()
	fmt.Printf("catalog %q: %d rule(s)\n\n", cat.Version(), len(rules))

	byKind := make(map[catalog.RuleKind][]*catalog.Rule)
	for _, r := range rules {
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}
	for _, kind := range []catalog.RuleKind{catalog.KindIgnore, catalog.KindConditionalIgnore, catalog.KindError, catalog.KindWarning} {
		kindRules := byKind[kind]
		if len(kindRules) == 0 {
			continue
		}
		fmt.Printf("%s rules:\n", strings.ToUpper(string(kind)[:1])+string(kind)[1:])
		for _, r := range kindRules {
			if r.Kind == catalog.KindError || r.Kind == catalog.KindWarning {
				fmt.Printf("  %-28s L%-2d %-20s %s\n", r.ID, r.Level, r.Tag, r.Pattern)
			} else {
				fmt.Printf("  %-28s %s\n", r.ID, r.Pattern)
			}
		}
		fmt.Println()
	}
	return nil
}

func newRulesValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate rule files",
		Long: `Validate one or more rule YAML files: syntax, required fields, level
ranges and regex compilation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesValidate(args)
		},
	}
	return cmd
}

func runRulesValidate(files []string) error {
	allValid := true
	for _, file := range files {
		cat, err := catalog.LoadFile(file)
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", file, err)
			allValid = false
			continue
		}
		fmt.Printf("ok    %s: %d rule(s)\n", file, cat.Len())
	}
	if !allValid {
		return fmt.Errorf("some rule files are invalid")
	}
	return nil
}

func newRulesWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a rules directory and reload on change",
		Long: `Watch a rules directory and recompile the catalog whenever a file
changes. Broken edits are reported and the last good catalog stays in
effect, the same swap discipline a long-running triage service uses.

Press Ctrl+C to stop watching.

Examples:
  faildex rules watch ./rules`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesWatch(args[0])
		},
	}
	return cmd
}

func runRulesWatch(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger("rules")

	eng, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	reload := func() error {
		cat, err := catalog.LoadDir(dir)
		if err != nil {
			return err
		}
		eng.SwapCatalog(cat)
		fmt.Printf("catalog %q in effect: %d rule(s)\n", cat.Version(), cat.Len())
		return nil
	}
	if err := reload(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
		}
	}()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	ctx, stop := contextWithSignals()
	defer stop()

	fmt.Printf("watching %s for rule changes\n", dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRuleFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("rule file changed", logger.F("file", event.Name), logger.F("op", event.Op))
			if err := reload(); err != nil {
				log.Error("reload failed, keeping previous catalog", logger.Err(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", logger.Err(err))
		}
	}
}

func isRuleFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
