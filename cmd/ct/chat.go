package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dOtOb9/message/internal/chat"
	"github.com/dOtOb9/message/internal/models"
	"github.com/dOtOb9/message/internal/todo"
	"github.com/dOtOb9/message/internal/watcher"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		user       string
		friend     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Follow a conversation and generate todos from it",
		Long:  "Opens a conversation between two users, prints messages as they arrive, and runs the debounced analysis session that turns bursts of new messages into generated todos.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || friend == "" {
				return fmt.Errorf("--user and --friend are required")
			}
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			friendName := ""
			if names, err := chat.UserNames(gormDB); err == nil {
				friendName = names[friend]
			} else {
				log.Printf("load user names: %v", err)
			}

			session, err := watcher.NewSession(watcher.SessionOpts{
				DB:              gormDB,
				Todos:           todo.NewStore(gormDB),
				Gen:             buildGenerator(cfg, out),
				ClassifierModel: cfg.OpenAI.ClassifierModel,
				ExtractorModel:  cfg.OpenAI.ExtractorModel,
				UserID:          user,
				FriendID:        friend,
				FriendName:      friendName,
				Debounce:        time.Duration(cfg.Watcher.DebounceSeconds) * time.Second,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			fmt.Fprintf(out, "Following chat %s (Ctrl-C to leave)...\n", session.ChatID())

			var printed uint
			return chat.Subscribe(ctx, gormDB, session.ChatID(),
				time.Duration(cfg.Watcher.PollSeconds)*time.Second,
				func(msgs []models.Message) {
					for _, m := range msgs {
						if m.ID <= printed {
							continue
						}
						printed = m.ID
						fmt.Fprintf(out, "[%s] %s: %s\n",
							m.CreatedAt.Format("15:04:05"), m.SenderID, m.Text)
					}
					session.OnMessagesChanged(msgs)
				})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&user, "user", "", "your user ID (owns generated todos)")
	cmd.Flags().StringVar(&friend, "friend", "", "conversation partner's user ID")
	return cmd
}
