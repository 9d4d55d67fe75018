package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dOtOb9/message/internal/todo"
	"github.com/spf13/cobra"
)

// shortID abbreviates a todo ID for display. IDs are normally UUIDs
// but the store accepts arbitrary strings, so short ones pass through.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func newTodoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Todo management commands",
	}
	cmd.AddCommand(newTodoListCmd())
	cmd.AddCommand(newTodoAddCmd())
	cmd.AddCommand(newTodoToggleCmd())
	cmd.AddCommand(newTodoRmCmd())
	return cmd
}

func newTodoListCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's todos from both lineages, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			items, err := todo.NewStore(gormDB).ListForUser(user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No todos.")
				return nil
			}
			for _, it := range items {
				mark := " "
				if todo.IsCompleted(it) {
					mark = "x"
				}
				origin := ""
				if todo.IsFromChat(it) {
					origin = fmt.Sprintf(" (from %s)", it.SourceFriendName)
				}
				created := time.UnixMilli(it.CreatedAt).Format("2006/01/02 15:04")
				fmt.Fprintf(out, "[%s] %s  %s%s  %s\n", mark, shortID(it.ID), todo.DisplayContent(it), origin, created)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	return cmd
}

func newTodoAddCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "add <content>...",
		Short: "Add a manual todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := todo.NewStore(gormDB).Add(user, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added todo %s: %s\n", shortID(t.ID), t.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	return cmd
}

func newTodoToggleCmd() *cobra.Command {
	var (
		configPath string
		user       string
		fromChat   bool
	)

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo's completion state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := todo.NewStore(gormDB).Toggle(user, args[0], fromChat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toggled todo %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	cmd.Flags().BoolVar(&fromChat, "from-chat", false, "todo is in the chat-generated lineage")
	return cmd
}

func newTodoRmCmd() *cobra.Command {
	var (
		configPath string
		user       string
		fromChat   bool
	)

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := todo.NewStore(gormDB).Delete(user, args[0], fromChat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	cmd.Flags().BoolVar(&fromChat, "from-chat", false, "todo is in the chat-generated lineage")
	return cmd
}
