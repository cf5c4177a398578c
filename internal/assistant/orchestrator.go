// Package assistant answers natural-language questions about a user's
// cashbook data. Every answer is produced from stored transactions: an
// optional language model plans the data fetch and phrases the reply, and
// a deterministic pipeline covers every question when the model is absent
// or fails.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hisabkitab/hisab/internal/aggregate"
	"github.com/hisabkitab/hisab/internal/common"
	"github.com/hisabkitab/hisab/internal/llm"
	"github.com/hisabkitab/hisab/internal/model"
	"github.com/hisabkitab/hisab/internal/nlu"
	"github.com/hisabkitab/hisab/internal/service"
)

const (
	defaultLLMTimeout = 15 * time.Second

	noCashbooksAnswer = "You have no cashbooks yet. Create one first, then ask me about totals, categories, or budgets."
)

// Identity carries session identity so common profile questions avoid a
// database lookup.
type Identity struct {
	Username string
	Email    string
}

// Request is one question from one authenticated user. Budgets maps
// cashbook id to the user's configured monthly budget; cashbooks without
// an entry have no budget.
type Request struct {
	Question          string
	Identity          Identity
	Budgets           map[int64]float64
	UserID            int64
	CurrentCashbookID int64
}

// Options configures an Assistant beyond its storage dependency. A nil
// Chat disables the model path entirely.
type Options struct {
	Chat       llm.Client
	Logger     *slog.Logger
	Today      func() model.Day
	LLMTimeout time.Duration
}

// Assistant orchestrates question answering over one Storage.
type Assistant struct {
	store      service.Storage
	chat       llm.Client
	logger     *slog.Logger
	today      func() model.Day
	llmTimeout time.Duration
}

// New creates an Assistant.
func New(store service.Storage, opts Options) *Assistant {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	today := opts.Today
	if today == nil {
		today = model.Today
	}
	timeout := opts.LLMTimeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &Assistant{
		store:      store,
		chat:       opts.Chat,
		logger:     logger,
		today:      today,
		llmTimeout: timeout,
	}
}

// state is one step of the answering machine. Transitions only move
// forward; the model states fall back to local compute on any failure.
type state int

const (
	stateProfile state = iota
	stateNoCashbooks
	stateLLMPlan
	stateLLMRespond
	stateLocalCompute
	stateAmbiguous
	stateAnswered
)

// run holds the per-request working set.
type run struct {
	a             *Assistant
	req           Request
	normalized    string
	today         model.Day
	cashbooks     []model.Cashbook
	plan          Plan
	planStart     model.Day
	planEnd       model.Day
	planBlocks    []Block
	cachedProfile *model.UserProfile
	profileLoaded bool
}

// Answer resolves one question to one answer string. Storage failures are
// returned as errors; model failures are not, they divert to the
// deterministic path.
func (a *Assistant) Answer(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", common.NewUserError("message is required", nil)
	}

	r := &run{
		a:          a,
		req:        req,
		normalized: nlu.Normalize(req.Question),
		today:      a.today(),
	}

	var answer string
	st := stateProfile
	for st != stateAnswered {
		switch st {
		case stateProfile:
			profileAnswer, ok, err := r.profileAnswer(ctx)
			if err != nil {
				return "", err
			}
			if ok {
				answer = profileAnswer
				questionsTotal.WithLabelValues("profile").Inc()
				st = stateAnswered
				continue
			}

			cashbooks, err := a.store.ListCashbooks(ctx, req.UserID)
			if err != nil {
				return "", fmt.Errorf("failed to list cashbooks: %w", err)
			}
			r.cashbooks = cashbooks
			if len(cashbooks) == 0 {
				st = stateNoCashbooks
				continue
			}
			if a.chat != nil {
				st = stateLLMPlan
			} else {
				st = stateLocalCompute
			}

		case stateNoCashbooks:
			answer = noCashbooksAnswer
			questionsTotal.WithLabelValues("no_cashbooks").Inc()
			st = stateAnswered

		case stateLLMPlan:
			if err := r.planWithLLM(ctx); err != nil {
				// Storage failures are hard errors; only model failures
				// divert to the deterministic path.
				if !errors.Is(err, common.ErrLLMUnavailable) {
					return "", err
				}
				a.logger.Warn("planner call failed, using local answer", "error", err)
				llmFailuresTotal.WithLabelValues("plan").Inc()
				st = stateLocalCompute
				continue
			}
			st = stateLLMRespond

		case stateLLMRespond:
			respondAnswer, err := r.respondWithLLM(ctx)
			if err != nil {
				if !errors.Is(err, common.ErrLLMUnavailable) {
					return "", err
				}
				a.logger.Warn("responder call failed, using local answer", "error", err)
				llmFailuresTotal.WithLabelValues("respond").Inc()
				st = stateLocalCompute
				continue
			}
			answer = respondAnswer
			questionsTotal.WithLabelValues("llm").Inc()
			st = stateAnswered

		case stateLocalCompute:
			if msg, ambiguous := r.clarification(ctx); ambiguous {
				answer = msg
				st = stateAmbiguous
				continue
			}
			localAnswer, err := r.computeLocal(ctx)
			if err != nil {
				return "", err
			}
			answer = localAnswer
			questionsTotal.WithLabelValues("local").Inc()
			st = stateAnswered

		case stateAmbiguous:
			questionsTotal.WithLabelValues("clarification").Inc()
			st = stateAnswered
		}
	}

	return answer, nil
}

// chatWithRetry sends one chat request, retrying rate-limited calls once.
// Other failures are not worth retrying: the deterministic path is cheaper
// than a second slow round trip.
func (a *Assistant) chatWithRetry(ctx context.Context, req llm.Request) (string, error) {
	var out string
	err := common.WithRetry(ctx, func() error {
		var err error
		out, err = a.chat.Chat(ctx, req)
		if err == nil {
			return nil
		}
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return &common.RetryableError{Err: err, Retryable: false}
	}, service.RetryOptions{MaxAttempts: 2, InitialDelay: 500 * time.Millisecond})
	return out, err
}

// profile loads the user profile once per request. Lookup failures
// degrade to nil so identity answers can fall back to generic phrasing.
func (r *run) profile(ctx context.Context) *model.UserProfile {
	if r.profileLoaded {
		return r.cachedProfile
	}
	r.profileLoaded = true
	p, err := r.a.store.GetUserProfile(ctx, r.req.UserID)
	if err != nil {
		r.a.logger.Debug("profile lookup failed", "error", err)
		return nil
	}
	r.cachedProfile = p
	return p
}

// clarification checks for the two question shapes that need the user to
// disambiguate before any data work: a bare "number" with no metric, and
// a cashbook that cannot be resolved.
func (r *run) clarification(ctx context.Context) (string, bool) {
	namePart := ""
	if name := r.username(ctx); name != "" {
		namePart = name + ", "
	}

	if nlu.IsAmbiguousNumberQuestion(r.normalized) {
		return namePart + "what number do you want for that cashbook — inflow, outflow (spent), balance, or number of transactions?", true
	}

	_, clar := nlu.ResolveCashbooks(r.normalized, r.cashbooks, r.req.CurrentCashbookID)
	if clar != nil {
		if len(clar.Candidates) > 0 {
			quoted := make([]string, len(clar.Candidates))
			for i, name := range clar.Candidates {
				quoted[i] = fmt.Sprintf("“%s”", name)
			}
			return fmt.Sprintf("%swhich cashbook do you mean — %s?", namePart, strings.Join(quoted, " or ")), true
		}
		return namePart + "which cashbook do you mean? Tell me the cashbook name.", true
	}

	return "", false
}

// computeLocal runs the deterministic pipeline: classify, resolve the
// range and cashbooks, fetch only what the intent needs, render.
func (r *run) computeLocal(ctx context.Context) (string, error) {
	selected, _ := nlu.ResolveCashbooks(r.normalized, r.cashbooks, r.req.CurrentCashbookID)

	rng := nlu.ResolveRange(r.normalized, r.today)
	intent := nlu.Classify(r.normalized)

	// Bare metric and count questions with no range words mean all time,
	// not the trailing default window. Balance is always all time.
	metricAllTime := !rng.Explicit && intent.Kind == nlu.KindMetric &&
		(intent.Metric == nlu.MetricInflow || intent.Metric == nlu.MetricOutflow ||
			intent.Metric == nlu.MetricNet || intent.Metric == nlu.MetricTotals)
	countAllTime := !rng.Explicit && intent.Kind == nlu.KindCount

	usedDefault := !rng.Explicit && !metricAllTime && !countAllTime
	used := UsedRange{Start: rng.Start, End: rng.End}
	if metricAllTime || countAllTime {
		used = UsedRange{Label: "all time"}
	}

	wantsFull := intent.Kind == nlu.KindFull
	wantsRecent := intent.Kind == nlu.KindRecent
	wantsBalance := intent.Kind == nlu.KindMetric && intent.Metric == nlu.MetricBalance
	wantsBudget := intent.Kind == nlu.KindBudget
	wantsCount := intent.Kind == nlu.KindCount

	needAllTime := wantsFull || wantsBalance || metricAllTime
	needRecent := wantsFull || wantsRecent
	needAllTimeCount := wantsFull || countAllTime

	last7Start := r.today.AddDays(-6)
	monthStart := r.today.StartOfMonth()

	blocks := make([]Block, 0, len(selected))
	for _, cb := range selected {
		block := Block{Cashbook: cb}

		if needAllTime {
			balance, err := r.a.store.GetAllTimeBalance(ctx, r.req.UserID, cb.ID)
			if err != nil {
				return "", err
			}
			block.AllTime = &balance
		}

		if needRecent {
			recent, err := r.a.store.GetRecentTransactions(ctx, r.req.UserID, cb.ID, 5)
			if err != nil {
				return "", err
			}
			block.Recent = recent
		}

		if needAllTimeCount {
			count, err := r.a.store.GetTransactionCount(ctx, r.req.UserID, cb.ID)
			if err != nil {
				return "", err
			}
			block.Count = &count
			block.CountAllTime = &count
		}

		var snapshot aggregate.Snapshot
		switch {
		case metricAllTime:
			snapshot = aggregate.FromBalance(*block.AllTime)
		case countAllTime:
			// Count-only all-time query, no range scan needed.
		default:
			txns, err := r.a.store.GetTransactionsInRange(ctx, r.req.UserID, cb.ID, rng.Start, rng.End)
			if err != nil {
				return "", err
			}
			if wantsCount {
				count := len(txns)
				block.Count = &count
			}
			snapshot = aggregate.Build(txns, rng.Start, rng.End)
		}
		block.RangeSummary = &snapshot

		if (wantsBudget || wantsFull) && r.req.Budgets[cb.ID] > 0 {
			rangeDays := snapshot.RangeDays
			if rangeDays < 1 {
				rangeDays = 1
			}
			forecast := aggregate.Forecast(snapshot.Totals.Outflow, rangeDays, rng.End.DaysInMonth(), r.req.Budgets[cb.ID])
			block.Forecast = &forecast
		}

		if wantsFull {
			tx7, err := r.a.store.GetTransactionsInRange(ctx, r.req.UserID, cb.ID, last7Start, r.today)
			if err != nil {
				return "", err
			}
			last7 := aggregate.Build(tx7, last7Start, r.today)
			block.Last7 = &last7

			txMonth, err := r.a.store.GetTransactionsInRange(ctx, r.req.UserID, cb.ID, monthStart, r.today)
			if err != nil {
				return "", err
			}
			thisMonth := aggregate.Build(txMonth, monthStart, r.today)
			block.ThisMonth = &thisMonth
		}

		blocks = append(blocks, block)
	}

	return Compose(r.normalized, intent, blocks, used, usedDefault), nil
}

// planWithLLM asks the model which cashbooks, range and datasets the
// question needs, then fetches them.
func (r *run) planWithLLM(ctx context.Context) error {
	messages, err := PlannerMessages(r.req.Question, r.cashbooks, r.req.CurrentCashbookID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.a.llmTimeout)
	defer cancel()

	planText, err := r.a.chatWithRetry(callCtx, llm.Request{Messages: messages, JSONMode: true})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrLLMUnavailable, err)
	}

	r.plan = ParsePlan(planText, r.cashbooks, r.req.CurrentCashbookID)

	start := r.plan.Start
	end := r.plan.End
	if start.IsZero() {
		start = r.today.AddDays(-30)
	}
	if end.IsZero() {
		end = r.today
	}
	r.planStart, r.planEnd = nlu.ClampRange(start, end)

	return r.fetchPlanData(ctx)
}

func (r *run) fetchPlanData(ctx context.Context) error {
	byID := make(map[int64]model.Cashbook, len(r.cashbooks))
	for _, cb := range r.cashbooks {
		byID[cb.ID] = cb
	}

	inc := r.plan.Include
	needRange := inc.Totals || inc.CategoryBreakdown || inc.DailyTrend || inc.BudgetForecast

	blocks := make([]Block, 0, len(r.plan.CashbookIDs))
	for _, id := range r.plan.CashbookIDs {
		cb, ok := byID[id]
		if !ok {
			continue
		}
		block := Block{Cashbook: cb}

		if inc.Balance {
			balance, err := r.a.store.GetAllTimeBalance(ctx, r.req.UserID, id)
			if err != nil {
				return err
			}
			block.AllTime = &balance
		}

		if inc.Recent > 0 {
			recent, err := r.a.store.GetRecentTransactions(ctx, r.req.UserID, id, inc.Recent)
			if err != nil {
				return err
			}
			block.Recent = recent
		}

		var txns []model.Transaction
		if needRange {
			var err error
			txns, err = r.a.store.GetTransactionsInRange(ctx, r.req.UserID, id, r.planStart, r.planEnd)
			if err != nil {
				return err
			}
		}
		snapshot := aggregate.Build(txns, r.planStart, r.planEnd)
		block.RangeSummary = &snapshot

		if inc.BudgetForecast {
			forecast := aggregate.Forecast(snapshot.Totals.Outflow, snapshot.RangeDays, r.planEnd.DaysInMonth(), r.req.Budgets[id])
			block.Forecast = &forecast
		}

		blocks = append(blocks, block)
	}

	r.planBlocks = blocks
	return nil
}

// respondWithLLM asks the model to phrase the final answer from the
// fetched data.
func (r *run) respondWithLLM(ctx context.Context) (string, error) {
	messages, err := ResponderMessages(r.req.Question, r.plan, r.planStart, r.planEnd, r.planBlocks)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.a.llmTimeout)
	defer cancel()

	answer, err := r.a.chatWithRetry(callCtx, llm.Request{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrLLMUnavailable, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", common.ErrLLMUnavailable)
	}
	return answer, nil
}
