package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lioncard-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [<username> <password>]",
	Short: "Logs into the campus card portal and saves the credentials.",
	Long:  "Logs into the campus card portal and saves the credentials. Without arguments the username and password are taken from config.json5.",
	Args:  cobra.MatchAll(cobra.RangeArgs(0, 2), func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("provide both a username and a password, or neither")
		}
		return nil
	}),
	Run: func(cmd *cobra.Command, args []string) {
		config := readConfig()
		username, password := config.Username, config.Password
		if len(args) == 2 {
			username, password = args[0], args[1]
		}

		service := newService()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*60)
		defer cancel()

		_, err := service.Login(ctx, username, password)
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}

		slog.Info("logged in", "username", username)
		renderBalances(service.State())
	},
}
