package assistant

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisabkitab/hisab/internal/llm"
	"github.com/hisabkitab/hisab/internal/model"
)

// mockStorage serves canned cashbooks and transactions, deriving balances
// and counts the same way the real store does.
type mockStorage struct {
	err       error
	txns      map[int64][]model.Transaction
	profile   *model.UserProfile
	cashbooks []model.Cashbook
	userID    int64
}

func (m *mockStorage) ListCashbooks(_ context.Context, userID int64) ([]model.Cashbook, error) {
	if m.err != nil {
		return nil, m.err
	}
	if userID != m.userID {
		return nil, nil
	}
	return m.cashbooks, nil
}

func (m *mockStorage) owned(userID, cashbookID int64) bool {
	if userID != m.userID {
		return false
	}
	for _, cb := range m.cashbooks {
		if cb.ID == cashbookID {
			return true
		}
	}
	return false
}

func (m *mockStorage) GetTransactionsInRange(_ context.Context, userID, cashbookID int64, start, end model.Day) ([]model.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.owned(userID, cashbookID) {
		return nil, nil
	}
	var out []model.Transaction
	for _, t := range m.txns[cashbookID] {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStorage) GetAllTimeBalance(_ context.Context, userID, cashbookID int64) (model.Balance, error) {
	if m.err != nil {
		return model.Balance{}, m.err
	}
	var b model.Balance
	if !m.owned(userID, cashbookID) {
		return b, nil
	}
	for _, t := range m.txns[cashbookID] {
		if t.Type == model.Inflow {
			b.TotalInflow += t.Amount
		} else {
			b.TotalOutflow += t.Amount
		}
	}
	b.Balance = b.TotalInflow - b.TotalOutflow
	return b, nil
}

func (m *mockStorage) GetRecentTransactions(_ context.Context, userID, cashbookID int64, limit int) ([]model.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.owned(userID, cashbookID) {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}
	recent := make([]model.Transaction, len(m.txns[cashbookID]))
	copy(recent, m.txns[cashbookID])
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (m *mockStorage) GetTransactionCount(_ context.Context, userID, cashbookID int64) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if !m.owned(userID, cashbookID) {
		return 0, nil
	}
	return len(m.txns[cashbookID]), nil
}

func (m *mockStorage) GetUserProfile(_ context.Context, userID int64) (*model.UserProfile, error) {
	if m.profile == nil || userID != m.userID {
		return nil, errors.New("not found")
	}
	return m.profile, nil
}

func (m *mockStorage) Close() error { return nil }

// mockChat replays canned responses and records every request.
type mockChat struct {
	calls     []llm.Request
	responses []string
	errs      []error
}

func (m *mockChat) Chat(_ context.Context, req llm.Request) (string, error) {
	i := len(m.calls)
	m.calls = append(m.calls, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("no response configured")
}

func day(d int) model.Day { return model.NewDay(2024, time.March, d) }

func testToday() model.Day { return day(15) }

func newTestStore() *mockStorage {
	return &mockStorage{
		userID: 1,
		cashbooks: []model.Cashbook{
			{ID: 1, UserID: 1, Name: "mar"},
			{ID: 2, UserID: 1, Name: "feb"},
		},
		profile: &model.UserProfile{ID: 1, Username: "asha", Email: "asha@example.com", Mobile: "9800000001"},
		txns: map[int64][]model.Transaction{
			1: {
				{ID: 1, CashbookID: 1, Type: model.Inflow, Amount: 1000, Date: day(1), Description: "[#Salary] pay"},
				{ID: 2, CashbookID: 1, Type: model.Outflow, Amount: 250.55, Date: day(12), Description: "[#Groceries] weekly"},
				{ID: 3, CashbookID: 1, Type: model.Outflow, Amount: 100, Date: day(14), Description: "bus"},
			},
			2: {
				{ID: 4, CashbookID: 2, Type: model.Outflow, Amount: 300, Date: day(1), Description: "[#Rent] flat"},
			},
		},
	}
}

func newTestAssistant(store *mockStorage, chat llm.Client) *Assistant {
	return New(store, Options{Chat: chat, Today: testToday})
}

func answer(t *testing.T, a *Assistant, req Request) string {
	t.Helper()
	got, err := a.Answer(context.Background(), req)
	require.NoError(t, err)
	return got
}

func TestAnswerGreeting(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "hii", Identity: Identity{Username: "asha"}})
	assert.Equal(t, "Hi asha! Ask me things like “mar inflow”, “spent last 7 days in mar”, or “mar full details”.", got)
}

func TestAnswerBareMetricUsesAllTime(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	// Short metric questions collapse to a bare number.
	got := answer(t, a, Request{UserID: 1, Question: "mar inflow"})
	assert.Equal(t, "1000", got)

	got = answer(t, a, Request{UserID: 1, Question: "mar outflow"})
	assert.Equal(t, "350.55", got)
}

func TestAnswerSpendWithExplicitRange(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "how much did i spend in the last 7 days in mar"})
	assert.Equal(t, "In “mar”, your total spending is Rs 350.55 from 2024-03-09 to 2024-03-15.", got)
}

func TestAnswerCountAllTime(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "how many transactions in mar"})
	assert.Equal(t, "3", got)
}

func TestAnswerCountAcrossAllCashbooks(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "how many transactions do i have across all my cashbooks"})
	assert.Equal(t, "In “mar”, you have 3 transactions all time.\nIn “feb”, you have 1 transactions all time.", got)
}

func TestAnswerBalanceNeedsCashbook(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "balance", Identity: Identity{Username: "asha"}})
	assert.Equal(t, "asha, which cashbook do you mean — “mar” or “feb”?", got)
}

func TestAnswerBalanceWithCurrentCashbook(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "what is my current balance please", CurrentCashbookID: 1})
	assert.Equal(t, "Here’s your balance:\nBalance for “mar” is Rs 649.45 (inflow Rs 1000.00, outflow Rs 350.55).", got)
}

func TestAnswerAmbiguousNumberQuestion(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "number for mar", Identity: Identity{Username: "asha"}})
	assert.Equal(t, "asha, what number do you want for that cashbook — inflow, outflow (spent), balance, or number of transactions?", got)
}

func TestAnswerCategoryBreakdownDisclosesDefaultRange(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "category breakdown for mar"})
	assert.Equal(t,
		"Category breakdown for spending from 2024-02-15 to 2024-03-15: (I used the last 30 days by default. Say “all time”, “this month”, or “last 7 days” if you want.)\n"+
			"Groceries: Rs 250.55\n"+
			"Uncategorized: Rs 100.00",
		got)
}

func TestAnswerBudgetForecast(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{
		UserID:   1,
		Question: "budget forecast for feb",
		Budgets:  map[int64]float64{2: 10000},
	})
	assert.Equal(t,
		"Budget forecast based on your recent spending:\n"+
			"On track: projected spending Rs 310.00 this month (avg/day Rs 10.00)\n"+
			"Budget: Rs 10000.00 • Remaining: Rs 9690.00",
		got)
}

func TestAnswerBudgetForecastWithoutBudget(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "budget forecast for feb"})
	assert.Equal(t, "Budget forecast based on your recent spending:\nNo budget data.", got)
}

func TestAnswerFullDetails(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "feb full details"})
	assert.Contains(t, got, "Here are the full details from your cashbook data:")
	assert.Contains(t, got, "Cashbook “feb”")
	assert.Contains(t, got, "All time — Balance Rs -300.00 (Inflow Rs 0.00, Outflow Rs 300.00)")
	assert.Contains(t, got, "Transactions — 1 total")
	assert.Contains(t, got, "Last 7 days (2024-03-09 → 2024-03-15) — Inflow Rs 0.00, Outflow Rs 0.00, Net Rs 0.00")
	assert.Contains(t, got, "This month (2024-03-01 → 2024-03-15) — Inflow Rs 0.00, Outflow Rs 300.00, Net Rs -300.00")
	assert.Contains(t, got, "Top category this month — Rent (Rs 300.00)")
	assert.Contains(t, got, "2024-03-01: -Rs 300.00 (Rent) — flat")
}

func TestAnswerRecentTransactions(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "recent transactions in mar"})
	assert.Equal(t,
		"Here are the latest transactions:\n"+
			"2024-03-14: -Rs 100.00 outflow — bus\n"+
			"2024-03-12: -Rs 250.55 outflow (Groceries) — weekly\n"+
			"2024-03-01: +Rs 1000.00 inflow (Salary) — pay",
		got)
}

func TestAnswerNoCashbooks(t *testing.T) {
	store := newTestStore()
	store.cashbooks = nil
	a := newTestAssistant(store, nil)

	got := answer(t, a, Request{UserID: 1, Question: "mar inflow"})
	assert.Equal(t, "You have no cashbooks yet. Create one first, then ask me about totals, categories, or budgets.", got)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	_, err := a.Answer(context.Background(), Request{UserID: 1, Question: "   "})
	assert.Error(t, err)
}

func TestAnswerLLMPath(t *testing.T) {
	chat := &mockChat{
		responses: []string{
			`{"cashbookIds":[1],"startDate":null,"endDate":null,"include":{"balance":true,"totals":true,"recent":2,"categoryBreakdown":false,"dailyTrend":false,"budgetForecast":false}}`,
			"Your inflow for “mar” is Rs 1000.00.",
		},
	}
	a := newTestAssistant(newTestStore(), chat)

	got := answer(t, a, Request{UserID: 1, Question: "tell me about my inflow in mar over the past while"})
	assert.Equal(t, "Your inflow for “mar” is Rs 1000.00.", got)

	require.Len(t, chat.calls, 2)
	assert.True(t, chat.calls[0].JSONMode, "planner call must request JSON")
	assert.False(t, chat.calls[1].JSONMode)
	assert.Contains(t, chat.calls[1].Messages[1].Content, `"totalInflow":1000`)
}

func TestAnswerLLMFailureMatchesLocalAnswer(t *testing.T) {
	question := "how much did i spend in the last 7 days in mar"

	local := newTestAssistant(newTestStore(), nil)
	want := answer(t, local, Request{UserID: 1, Question: question})

	failing := &mockChat{errs: []error{errors.New("rate limited")}}
	withChat := newTestAssistant(newTestStore(), failing)
	got := answer(t, withChat, Request{UserID: 1, Question: question})

	assert.Equal(t, want, got, "fallback answer must match the no-credential answer")
}

func TestAnswerResponderFailureFallsBack(t *testing.T) {
	chat := &mockChat{
		responses: []string{`{"cashbookIds":"all"}`, ""},
		errs:      []error{nil, errors.New("timeout")},
	}
	a := newTestAssistant(newTestStore(), chat)

	got := answer(t, a, Request{UserID: 1, Question: "how much did i spend in the last 7 days in mar"})
	assert.Equal(t, "In “mar”, your total spending is Rs 350.55 from 2024-03-09 to 2024-03-15.", got)
	assert.Len(t, chat.calls, 2)
}

func TestAnswerStorageErrorPropagates(t *testing.T) {
	store := newTestStore()
	store.err = errors.New("disk gone")
	a := newTestAssistant(store, nil)

	_, err := a.Answer(context.Background(), Request{UserID: 1, Question: "mar inflow"})
	assert.Error(t, err)
}

func TestAnswerPhoneFromProfile(t *testing.T) {
	a := newTestAssistant(newTestStore(), nil)

	got := answer(t, a, Request{UserID: 1, Question: "what is my phone number"})
	assert.Equal(t, "Your registered phone number is 9800000001.", got)
}
