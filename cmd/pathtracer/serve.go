package main

import (
	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-pathtracer/internal/config"
	"github.com/df07/go-sphere-pathtracer/internal/logging"
	"github.com/df07/go-sphere-pathtracer/pkg/output"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Serve the browser interface. Renders stream tile by tile over
Server-Sent Events; the render flags set the defaults of each request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.NewServer(*a.config, a.logger)

			if a.config.S3.Enabled {
				publisher, err := output.NewS3Publisher(a.config.S3.Publisher(), logging.NewPrintfLogger(a.logger))
				if err != nil {
					return err
				}
				srv.SetPublisher(publisher)
			}

			return srv.Start(cmd.Context())
		},
	}

	config.AddServerFlags(cmd.Flags())
	config.AddRenderFlags(cmd.Flags())
	config.AddOutputFlags(cmd.Flags())
	return cmd
}
