package commands

import (
	"context"
	"fmt"
	"time"

	"lioncard-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(transactionsCmd)
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Fetches and displays the recent card activity.",
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*60)
		defer cancel()

		if err := service.Bootstrap(ctx); err != nil {
			serviceutil.Fatal("failed to fetch account data", err)
		}

		state := service.State()
		if state.Credentials == nil {
			fmt.Println("not logged in, run `lioncard-cli login <username> <password>` first")
			return
		}
		if state.Snapshot == nil || len(state.Snapshot.Transactions) == 0 {
			fmt.Println("no recent transactions")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Date", "Time", "Description", "Account", "Amount"})
		for _, tx := range state.Snapshot.Transactions {
			t.AppendRow(table.Row{tx.Date, tx.Time, tx.Description, tx.Account, tx.Amount})
		}
		t.Render()
	},
}
