package cli

import (
	"github.com/spf13/cobra"

	"github.com/avivsinai/thread-triage/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath != "" && !cmd.Flags().Changed("path") {
				path = a.configPath
			}
			if err := config.WriteConfig(path, config.DefaultConfig(), force); err != nil {
				return err
			}
			return a.printf("Wrote config to %s\n", path)
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultPath, "Where to write the config")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
