package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/dOtOb9/message/internal/pipeline"
	"github.com/dOtOb9/message/internal/todo"
	"github.com/dOtOb9/message/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the trigger daemon",
		Long:  "Polls for newly created messages and runs the todo generation pipeline once per message. Without an API key the pipeline runs the emulator mock (if enabled) or logs failures.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			deps := pipeline.Deps{
				DB:       gormDB,
				Todos:    todo.NewStore(gormDB),
				Gen:      buildGenerator(cfg, out),
				Model:    cfg.OpenAI.TriggerModel,
				Emulator: cfg.OpenAI.Emulator,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return watcher.RunTrigger(ctx, watcher.TriggerOpts{
				Deps:           deps,
				PollInterval:   time.Duration(cfg.Watcher.PollSeconds) * time.Second,
				DigestSchedule: cfg.Watcher.DigestSchedule,
				Out:            out,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
