package main

import (
	"fmt"

	"github.com/dOtOb9/message/internal/db"
	"github.com/dOtOb9/message/internal/models"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all store tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables (%s store)\n", len(db.AllModels()), cfg.Store.Driver)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User registry commands",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		configPath string
		id         string
		name       string
		email      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user so display names resolve in prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			user := models.User{ID: id, DisplayName: name, Email: email}
			if err := db.SeedUsers(gormDB, []models.User{user}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered user %s (%s)\n", id, name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&id, "id", "", "user ID")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}
