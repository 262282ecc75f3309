package campuscard

// MealPlan is one of the fixed meal plan offerings of the dining hall.
// The portal never states the plan totals anywhere on the account page,
// so they are maintained by hand from the university's published rates.
type MealPlan struct {
	// Code is the short plan identifier, e.g. "MPA".
	Code string
	// Marker is the substring of the balance row label that identifies
	// the plan on the account page.
	Marker             string
	Name               string
	TotalMeals         int
	TotalDiningDollars float64
	TotalGuestSwipes   int
}

// MealPlans is checked in order against balance row labels,
// the first matching marker wins.
var MealPlans = []MealPlan{
	{
		Code:               "MPA",
		Marker:             "MPA 14 Weekly Meals",
		Name:               "Meal Plan A",
		TotalMeals:         14,
		TotalDiningDollars: 175,
		TotalGuestSwipes:   5,
	},
	{
		Code:               "MPB",
		Marker:             "MPB 10 Weekly Meals",
		Name:               "Meal Plan B",
		TotalMeals:         10,
		TotalDiningDollars: 275,
		TotalGuestSwipes:   10,
	},
	{
		Code:               "MPC",
		Marker:             "MPC 80 Meals",
		Name:               "Meal Plan C",
		TotalMeals:         80,
		TotalDiningDollars: 125,
		TotalGuestSwipes:   5,
	},
	{
		Code:               "MPU",
		Marker:             "MPU 19 Meals",
		Name:               "Meal Plan U",
		TotalMeals:         19,
		TotalDiningDollars: 300,
		TotalGuestSwipes:   15,
	},
}

// Transaction is one row of the recent activity table, extracted
// positionally. Missing cells come through as empty strings.
type Transaction struct {
	Date        string
	Time        string
	Description string
	Account     string
	Amount      string
}

// Snapshot is the complete result of parsing one account page. Balance
// values are kept as the raw strings rendered by the portal ("6",
// "$43.98"); formatting is the consumer's problem. A nil balance means
// the corresponding row was absent from the page, which is a valid
// state and not an error.
type Snapshot struct {
	DiningDollars *string
	LionBucks     *string
	MealSwipes    *string
	GuestSwipes   *string
	Plan          *MealPlan
	Transactions  []Transaction
}
