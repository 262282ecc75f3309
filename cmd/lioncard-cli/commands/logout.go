package commands

import (
	"context"
	"log/slog"
	"time"

	"lioncard-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Removes the saved credentials.",
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*10)
		defer cancel()

		if err := service.Logout(ctx); err != nil {
			serviceutil.Fatal("failed to logout", err)
		}
		slog.Info("logged out")
	},
}
