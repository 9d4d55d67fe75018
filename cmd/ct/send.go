package main

import (
	"fmt"
	"strings"

	"github.com/dOtOb9/message/internal/chat"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var (
		configPath string
		from       string
		to         string
	)

	cmd := &cobra.Command{
		Use:   "send <text>...",
		Short: "Send a chat message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" {
				return fmt.Errorf("--from and --to are required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			msg, err := chat.Send(gormDB, from, to, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d in chat %s\n", msg.ID, msg.ChatID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&from, "from", "", "sender user ID")
	cmd.Flags().StringVar(&to, "to", "", "receiver user ID")
	return cmd
}
