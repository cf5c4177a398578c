package aggregate

// BudgetStatus classifies a forecast against the configured budget.
type BudgetStatus string

// Budget statuses.
const (
	OnTrack    BudgetStatus = "on_track"
	OverBudget BudgetStatus = "over_budget"
	NoBudget   BudgetStatus = "no_budget"
)

// BudgetForecast projects a month's outflow from the observed daily
// average. Remaining is nil when no budget is configured.
type BudgetForecast struct {
	Remaining             *float64
	Status                BudgetStatus
	MonthlyBudget         float64
	AvgDailyOutflow       float64
	ProjectedMonthOutflow float64
	MonthDays             int
}

// Forecast computes the budget projection for a month of monthDays days
// from the outflow observed over rangeDays. A budget of zero or less
// yields NoBudget with a nil Remaining.
func Forecast(outflow float64, rangeDays, monthDays int, monthlyBudget float64) BudgetForecast {
	var avgDaily float64
	if rangeDays > 0 {
		avgDaily = outflow / float64(rangeDays)
	}
	projected := avgDaily * float64(monthDays)

	f := BudgetForecast{
		MonthlyBudget:         monthlyBudget,
		AvgDailyOutflow:       round2(avgDaily),
		ProjectedMonthOutflow: round2(projected),
		MonthDays:             monthDays,
	}

	if monthlyBudget > 0 {
		remaining := round2(monthlyBudget - projected)
		f.Remaining = &remaining
		if projected <= monthlyBudget {
			f.Status = OnTrack
		} else {
			f.Status = OverBudget
		}
	} else {
		f.Status = NoBudget
	}

	return f
}
