package campuscard

import (
	"fmt"
	"strings"

	"lioncard-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoAccountData means the fetched page contains none of the expected
// table structure, usually because the portal served a login or error
// page instead of the account home. Individual missing rows are NOT
// this error, they just leave the matching snapshot fields unset.
var ErrNoAccountData = fmt.Errorf("page contains no account data")

const (
	// the only stable signal for a balance row is the right-aligned
	// amount cell, the portal markup carries no usable class names
	balanceRowSelector     = `tr:has(td div[align="right"])`
	transactionRowSelector = "tr#EntryRow"

	// bound against unrelated right-aligned content further down the
	// page, the account summary never renders more than four rows
	maxBalanceRows = 4

	// structural constants of this page layout
	labelCellIndex = 1
	valueCellIndex = 3
)

func ParseAccountPage(page string) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrNoAccountData, err)
	}

	var snapshot Snapshot

	balanceRows := doc.Find(balanceRowSelector)
	balanceRows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= maxBalanceRows {
			return false
		}
		cells := row.ChildrenFiltered("td")
		label := htmlutil.CellText(cells.Eq(labelCellIndex))
		value := htmlutil.CellText(cells.Eq(valueCellIndex))
		if label == "" || value == "" {
			return true
		}
		classifyBalanceRow(&snapshot, label, value)
		return true
	})

	transactionRows := doc.Find(transactionRowSelector)
	transactionRows.Each(func(_ int, row *goquery.Selection) {
		snapshot.Transactions = append(snapshot.Transactions, parseTransactionRow(row))
	})

	if balanceRows.Length() == 0 && transactionRows.Length() == 0 {
		return Snapshot{}, ErrNoAccountData
	}

	return snapshot, nil
}

// classifyBalanceRow assigns a balance row to a snapshot field by
// case-sensitive substring containment, first match wins. Rows that
// match nothing are dropped silently.
func classifyBalanceRow(snapshot *Snapshot, label, value string) {
	switch {
	case strings.Contains(label, "Lion Bucks"):
		snapshot.LionBucks = &value
	case strings.Contains(label, "Guest Meals"):
		snapshot.GuestSwipes = &value
	case strings.Contains(label, "DD"):
		snapshot.DiningDollars = &value
	case strings.Contains(label, "Meals"):
		// a meal plan row always carries the remaining swipe count;
		// an unrecognized plan code still yields the count, just
		// without plan totals
		snapshot.MealSwipes = &value
		for _, plan := range MealPlans {
			if strings.Contains(label, plan.Marker) {
				plan := plan
				snapshot.Plan = &plan
				break
			}
		}
	}
}

func parseTransactionRow(row *goquery.Selection) Transaction {
	cells := row.ChildrenFiltered("td")
	// cell 4 is a running balance column the portal leaves blank,
	// the amount lives in cell 5
	return Transaction{
		Date:        htmlutil.CellText(cells.Eq(0)),
		Time:        htmlutil.CellText(cells.Eq(1)),
		Description: htmlutil.CellText(cells.Eq(2)),
		Account:     htmlutil.CellText(cells.Eq(3)),
		Amount:      htmlutil.CellText(cells.Eq(5)),
	}
}
