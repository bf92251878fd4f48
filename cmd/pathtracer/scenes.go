package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

func newScenesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List the preset scenes and the scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenes, err := scene.ListAllScenes(a.config.ScenesDir)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scenes)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, group := range scenes.Groups {
				fmt.Fprintf(tw, "%s:\n", group.Name)
				for _, info := range group.Scenes {
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", info.ID, info.DisplayName, info.Description)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("scenes-dir", config.Default().ScenesDir, "Directory searched for scene files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")
	return cmd
}
