package main

import (
	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-pathtracer/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after applying the config file, the
environment and the flags. The output is a valid config file; S3
credentials are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.config.WriteYAML(cmd.OutOrStdout())
		},
	}

	config.AddRenderFlags(cmd.Flags())
	config.AddOutputFlags(cmd.Flags())
	config.AddServerFlags(cmd.Flags())
	return cmd
}
