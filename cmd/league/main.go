package main

import (
	"os"

	"github.com/spf13/cobra"

	"league-app-go/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()

	root := &cobra.Command{
		Use:           "league",
		Short:         "Sports league approval service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), log)
		},
	}
	root.AddCommand(
		newServeCommand(log),
		newMigrateCommand(log),
		newPoliciesCommand(log),
		newRoleCommand(log),
	)

	if err := root.Execute(); err != nil {
		log.Critical("app: command failed", "err", err)
		os.Exit(1)
	}
}
