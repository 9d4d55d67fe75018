package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dOtOb9/message/internal/server"
	"github.com/dOtOb9/message/internal/todo"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long:  "Serves messages and todos over HTTP. Message creation through this API is the event source the watch daemon reacts to.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Server.Port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return server.Start(ctx, server.StartOpts{
				DB:    gormDB,
				Todos: todo.NewStore(gormDB),
				Port:  port,
				Out:   cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
