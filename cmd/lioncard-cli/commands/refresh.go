package commands

import (
	"context"
	"time"

	"lioncard-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetches the account data with the saved credentials.",
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*60)
		defer cancel()

		// each invocation is a fresh process so the saved credentials
		// have to be loaded before the fetch can run, Bootstrap does
		// both in one go
		if err := service.Bootstrap(ctx); err != nil {
			serviceutil.Fatal("failed to refresh account data", err)
		}
		renderBalances(service.State())
	},
}
