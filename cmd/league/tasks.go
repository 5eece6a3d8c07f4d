package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"league-app-go/internal/app"
	"league-app-go/internal/config"
	"league-app-go/internal/domain/shared"
	"league-app-go/pkg/logger"
)

func newMigrateCommand(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg, log)
		},
	}
}

func newPoliciesCommand(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "Print the validated approval policy table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			table, err := app.LoadPolicies(cfg)
			if err != nil {
				return err
			}
			return table.WriteYAML(cmd.OutOrStdout())
		},
	}
}

func newRoleCommand(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "role <user_id> <user|admin>",
		Short: "Set a user's global role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			profile, err := app.SetRole(cmd.Context(), cfg, log, args[0], shared.GlobalRole(args[1]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", profile.UserID, profile.Role)
			return err
		},
	}
}

