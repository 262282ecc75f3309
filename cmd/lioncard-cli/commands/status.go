package commands

import (
	"context"
	"fmt"
	"time"

	"lioncard-backend/lib/serviceutil"
	"lioncard-backend/services/lioncard"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetches and displays the current balances and meal plan.",
	Run: func(cmd *cobra.Command, args []string) {
		service := newService()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Second*60)
		defer cancel()

		if err := service.Bootstrap(ctx); err != nil {
			serviceutil.Fatal("failed to fetch account data", err)
		}
		renderBalances(service.State())
	},
}

func orDash(value *string) string {
	if value == nil {
		return "-"
	}
	return *value
}

func renderBalances(state lioncard.State) {
	if state.Credentials == nil {
		fmt.Println("not logged in, run `lioncard-cli login <username> <password>` first")
		return
	}
	snapshot := state.Snapshot
	if snapshot == nil {
		fmt.Println("no account data available")
		return
	}

	t := newTable()
	t.AppendHeader(table.Row{"Account", "Remaining"})
	t.AppendRows([]table.Row{
		{"Meal Swipes", orDash(snapshot.MealSwipes)},
		{"Guest Meals", orDash(snapshot.GuestSwipes)},
		{"Dining Dollars", orDash(snapshot.DiningDollars)},
		{"Lion Bucks", orDash(snapshot.LionBucks)},
	})
	t.Render()

	if snapshot.Plan != nil {
		plan := snapshot.Plan
		t = newTable()
		t.AppendHeader(table.Row{"Meal Plan", "Meals", "Dining Dollars", "Guest Meals"})
		t.AppendRow(table.Row{
			plan.Name,
			plan.TotalMeals,
			fmt.Sprintf("$%.2f", plan.TotalDiningDollars),
			plan.TotalGuestSwipes,
		})
		t.Render()
	}
}
