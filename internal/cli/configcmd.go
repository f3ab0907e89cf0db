package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/faildex/faildex/internal/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			return writeOutput(out)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "List the configuration search paths",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, path := range config.GetConfigPaths() {
				fmt.Println(path)
			}
			if found, ok := config.FindConfigFile(); ok {
				fmt.Printf("\nactive: %s\n", found)
			} else {
				fmt.Println("\nactive: built-in defaults")
			}
		},
	})

	return cmd
}
