package assistant

import (
	"encoding/json"
	"fmt"

	"github.com/hisabkitab/hisab/internal/llm"
	"github.com/hisabkitab/hisab/internal/model"
)

const plannerSystemPrompt = `You are a planning assistant for a cashbook app. Return ONLY valid JSON. ` +
	`Decide which cashbook(s) the user refers to and what date range and metrics are needed. ` +
	`If user does not specify date range, use last 30 days for trends/categories and all-time for balance. ` +
	`Never include extra keys.

JSON schema:
{
  "cashbookIds": "all" | "current" | number[],
  "startDate": "YYYY-MM-DD" | null,
  "endDate": "YYYY-MM-DD" | null,
  "include": {
    "balance": boolean,
    "totals": boolean,
    "recent": number,
    "categoryBreakdown": boolean,
    "dailyTrend": boolean,
    "budgetForecast": boolean
  }
}`

const responderSystemPrompt = `You are a helpful cashbook assistant. Answer ONLY using the provided data. ` +
	`If the user asks for something not available, say what you need (cashbook name, dates). ` +
	`Be concise and use simple bullet points when useful. Use INR formatting like Rs 123.45.`

// PlanInclude selects which datasets get fetched for the responder.
type PlanInclude struct {
	Balance           bool `json:"balance"`
	Totals            bool `json:"totals"`
	Recent            int  `json:"recent"`
	CategoryBreakdown bool `json:"categoryBreakdown"`
	DailyTrend        bool `json:"dailyTrend"`
	BudgetForecast    bool `json:"budgetForecast"`
}

// Plan is a planner response after normalization. CashbookIDs only holds
// ids the user actually owns; Start/End are zero when the planner left the
// range open.
type Plan struct {
	Start       model.Day
	End         model.Day
	CashbookIDs []int64
	Include     PlanInclude
}

type cashbookRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

func cashbookRefs(cashbooks []model.Cashbook) []cashbookRef {
	refs := make([]cashbookRef, len(cashbooks))
	for i, cb := range cashbooks {
		refs[i] = cashbookRef{ID: cb.ID, Name: cb.Name}
	}
	return refs
}

// PlannerMessages builds the two-message planning conversation.
func PlannerMessages(question string, cashbooks []model.Cashbook, currentCashbookID int64) ([]llm.Message, error) {
	var current *int64
	if currentCashbookID != 0 {
		current = &currentCashbookID
	}
	payload, err := json.Marshal(struct {
		Question          string        `json:"question"`
		CurrentCashbookID *int64        `json:"currentCashbookId"`
		Cashbooks         []cashbookRef `json:"cashbooks"`
	}{
		Question:          question,
		CurrentCashbookID: current,
		Cashbooks:         cashbookRefs(cashbooks),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal planner payload: %w", err)
	}

	return []llm.Message{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: string(payload)},
	}, nil
}

// rawPlan tolerates every shape a model has been seen to emit: string or
// array cashbookIds, null dates, missing include keys.
type rawPlan struct {
	CashbookIDs json.RawMessage `json:"cashbookIds"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Include     *rawInclude     `json:"include"`
}

type rawInclude struct {
	Balance           *bool    `json:"balance"`
	Totals            *bool    `json:"totals"`
	Recent            *float64 `json:"recent"`
	CategoryBreakdown *bool    `json:"categoryBreakdown"`
	DailyTrend        *bool    `json:"dailyTrend"`
	BudgetForecast    *bool    `json:"budgetForecast"`
}

// ParsePlan decodes and normalizes planner output. Malformed JSON degrades
// to the defaults instead of failing: the ids fall back to the current or
// first cashbook and every include flag defaults on.
func ParsePlan(text string, cashbooks []model.Cashbook, currentCashbookID int64) Plan {
	var raw rawPlan
	_ = json.Unmarshal([]byte(text), &raw)
	return normalizePlan(raw, cashbooks, currentCashbookID)
}

func normalizePlan(raw rawPlan, cashbooks []model.Cashbook, currentCashbookID int64) Plan {
	owned := make(map[int64]bool, len(cashbooks))
	for _, cb := range cashbooks {
		owned[cb.ID] = true
	}

	ids := planCashbookIDs(raw.CashbookIDs, cashbooks, currentCashbookID)
	filtered := ids[:0]
	for _, id := range ids {
		if owned[id] {
			filtered = append(filtered, id)
		}
	}
	ids = filtered
	if len(ids) == 0 && len(cashbooks) > 0 {
		ids = []int64{cashbooks[0].ID}
	}

	plan := Plan{
		CashbookIDs: ids,
		Start:       parsePlanDate(raw.StartDate),
		End:         parsePlanDate(raw.EndDate),
		Include: PlanInclude{
			Balance:           true,
			Totals:            true,
			Recent:            5,
			CategoryBreakdown: true,
			DailyTrend:        true,
			BudgetForecast:    true,
		},
	}

	if inc := raw.Include; inc != nil {
		if inc.Balance != nil {
			plan.Include.Balance = *inc.Balance
		}
		if inc.Totals != nil {
			plan.Include.Totals = *inc.Totals
		}
		if inc.Recent != nil {
			n := int(*inc.Recent)
			if n < 0 {
				n = 0
			}
			if n > 10 {
				n = 10
			}
			plan.Include.Recent = n
		}
		if inc.CategoryBreakdown != nil {
			plan.Include.CategoryBreakdown = *inc.CategoryBreakdown
		}
		if inc.DailyTrend != nil {
			plan.Include.DailyTrend = *inc.DailyTrend
		}
		if inc.BudgetForecast != nil {
			plan.Include.BudgetForecast = *inc.BudgetForecast
		}
	}

	return plan
}

func planCashbookIDs(raw json.RawMessage, cashbooks []model.Cashbook, currentCashbookID int64) []int64 {
	currentOrFirst := func() []int64 {
		if currentCashbookID != 0 {
			return []int64{currentCashbookID}
		}
		if len(cashbooks) > 0 {
			return []int64{cashbooks[0].ID}
		}
		return nil
	}

	if len(raw) == 0 {
		return currentOrFirst()
	}

	var keyword string
	if err := json.Unmarshal(raw, &keyword); err == nil {
		switch keyword {
		case "all":
			ids := make([]int64, len(cashbooks))
			for i, cb := range cashbooks {
				ids[i] = cb.ID
			}
			return ids
		case "current":
			if currentCashbookID != 0 {
				return []int64{currentCashbookID}
			}
			return nil
		}
		return currentOrFirst()
	}

	var numbers []float64
	if err := json.Unmarshal(raw, &numbers); err == nil {
		ids := make([]int64, 0, len(numbers))
		for _, n := range numbers {
			ids = append(ids, int64(n))
		}
		return ids
	}

	return currentOrFirst()
}

func parsePlanDate(s string) model.Day {
	if len(s) > 10 {
		s = s[:10]
	}
	day, err := model.ParseDay(s)
	if err != nil {
		return model.Day{}
	}
	return day
}

// Wire views for the responder payload. Keys mirror the client API shape
// so the model sees familiar field names.
type planJSON struct {
	CashbookIDs []int64     `json:"cashbookIds"`
	StartDate   *string     `json:"startDate"`
	EndDate     *string     `json:"endDate"`
	Include     PlanInclude `json:"include"`
}

type balanceJSON struct {
	TotalInflow  float64 `json:"totalInflow"`
	TotalOutflow float64 `json:"totalOutflow"`
	Balance      float64 `json:"balance"`
}

type txnJSON struct {
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	ID          int64   `json:"id"`
}

type totalsJSON struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

type categoryJSON struct {
	Name    string  `json:"name"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
}

type dailyJSON struct {
	Date    string  `json:"date"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
}

type summaryJSON struct {
	StartDate  *string        `json:"startDate"`
	EndDate    *string        `json:"endDate"`
	Categories []categoryJSON `json:"categories"`
	Daily      []dailyJSON    `json:"daily"`
	Totals     totalsJSON     `json:"totals"`
	RangeDays  int            `json:"rangeDays"`
}

type forecastJSON struct {
	Remaining             *float64 `json:"remaining"`
	Status                string   `json:"status"`
	MonthlyBudget         float64  `json:"monthlyBudget"`
	AvgDailyOutflow       float64  `json:"avgDailyOutflow"`
	ProjectedMonthOutflow float64  `json:"projectedMonthOutflow"`
	MonthDays             int      `json:"monthDays"`
}

type blockJSON struct {
	AllTimeBalance     *balanceJSON  `json:"allTimeBalance"`
	RangeSummary       *summaryJSON  `json:"rangeSummary"`
	BudgetForecast     *forecastJSON `json:"budgetForecast"`
	RecentTransactions []txnJSON     `json:"recentTransactions"`
	Cashbook           cashbookRef   `json:"cashbook"`
}

func dayPtr(d model.Day) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func planView(p Plan) planJSON {
	return planJSON{
		CashbookIDs: p.CashbookIDs,
		StartDate:   dayPtr(p.Start),
		EndDate:     dayPtr(p.End),
		Include:     p.Include,
	}
}

func blockView(b Block) blockJSON {
	view := blockJSON{
		Cashbook:           cashbookRef{ID: b.Cashbook.ID, Name: b.Cashbook.Name},
		RecentTransactions: make([]txnJSON, 0, len(b.Recent)),
	}

	if b.AllTime != nil {
		view.AllTimeBalance = &balanceJSON{
			TotalInflow:  b.AllTime.TotalInflow,
			TotalOutflow: b.AllTime.TotalOutflow,
			Balance:      b.AllTime.Balance,
		}
	}

	for _, r := range b.Recent {
		view.RecentTransactions = append(view.RecentTransactions, txnJSON{
			ID:          r.ID,
			Date:        r.Date.String(),
			Type:        string(r.Type),
			Amount:      r.Amount,
			Category:    r.Category(),
			Description: r.DisplayDescription(),
		})
	}

	if s := b.RangeSummary; s != nil {
		summary := summaryJSON{
			StartDate:  dayPtr(s.Start),
			EndDate:    dayPtr(s.End),
			RangeDays:  s.RangeDays,
			Totals:     totalsJSON{Inflow: s.Totals.Inflow, Outflow: s.Totals.Outflow, Net: s.Totals.Net},
			Categories: make([]categoryJSON, 0, len(s.Categories)),
			Daily:      make([]dailyJSON, 0, len(s.Daily)),
		}
		for _, c := range s.Categories {
			summary.Categories = append(summary.Categories, categoryJSON{Name: c.Name, Inflow: c.Inflow, Outflow: c.Outflow})
		}
		for _, d := range s.Daily {
			summary.Daily = append(summary.Daily, dailyJSON{Date: d.Date.String(), Inflow: d.Inflow, Outflow: d.Outflow})
		}
		view.RangeSummary = &summary
	}

	if f := b.Forecast; f != nil {
		view.BudgetForecast = &forecastJSON{
			MonthlyBudget:         f.MonthlyBudget,
			AvgDailyOutflow:       f.AvgDailyOutflow,
			ProjectedMonthOutflow: f.ProjectedMonthOutflow,
			Remaining:             f.Remaining,
			Status:                string(f.Status),
			MonthDays:             f.MonthDays,
		}
	}

	return view
}

type rangeUsedJSON struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type responderData struct {
	DateRangeUsed rangeUsedJSON `json:"dateRangeUsed"`
	Cashbooks     []blockJSON   `json:"cashbooks"`
}

type responderPayload struct {
	Question string        `json:"question"`
	Plan     planJSON      `json:"plan"`
	Data     responderData `json:"data"`
}

// ResponderMessages packages the plan and fetched data for the answering
// call.
func ResponderMessages(question string, plan Plan, start, end model.Day, blocks []Block) ([]llm.Message, error) {
	views := make([]blockJSON, len(blocks))
	for i, b := range blocks {
		views[i] = blockView(b)
	}

	payload, err := json.Marshal(responderPayload{
		Question: question,
		Plan:     planView(plan),
		Data: responderData{
			DateRangeUsed: rangeUsedJSON{StartDate: start.String(), EndDate: end.String()},
			Cashbooks:     views,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responder payload: %w", err)
	}

	return []llm.Message{
		{Role: "system", Content: responderSystemPrompt},
		{Role: "user", Content: string(payload)},
	}, nil
}
