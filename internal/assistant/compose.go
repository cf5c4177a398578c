package assistant

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hisabkitab/hisab/internal/aggregate"
	"github.com/hisabkitab/hisab/internal/model"
	"github.com/hisabkitab/hisab/internal/nlu"
)

// Block carries everything fetched for one cashbook. Fields that were not
// requested stay nil so renderers can tell "absent" from "zero".
type Block struct {
	Cashbook     model.Cashbook
	AllTime      *model.Balance
	Count        *int
	CountAllTime *int
	Recent       []model.Transaction
	RangeSummary *aggregate.Snapshot
	Last7        *aggregate.Snapshot
	ThisMonth    *aggregate.Snapshot
	Forecast     *aggregate.BudgetForecast
}

// UsedRange is the range disclosed back to the user. Label overrides the
// dates when set ("all time").
type UsedRange struct {
	Start model.Day
	End   model.Day
	Label string
}

func (u UsedRange) format() string {
	if u.Label != "" {
		return u.Label
	}
	if u.Start.IsZero() || u.End.IsZero() {
		return ""
	}
	if u.Start.Equal(u.End) {
		return fmt.Sprintf("on %s", u.Start)
	}
	return fmt.Sprintf("from %s to %s", u.Start, u.End)
}

func money(v float64) string {
	return fmt.Sprintf("Rs %.2f", v)
}

// plainNumber prints integers bare and everything else rounded to two
// decimals with trailing zeros stripped.
func plainNumber(v float64) string {
	rounded := math.Round(v*100) / 100
	if rounded == float64(int64(rounded)) {
		return strconv.FormatInt(int64(rounded), 10)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

var (
	answerOnlyRe  = regexp.MustCompile(`\b(answer\s*only|only\s*answer|just\s*answer)\b`)
	onlyNumberRe  = regexp.MustCompile(`\b(only|just)\b.*\b(number|amount|value)\b`)
	shortMetricRe = regexp.MustCompile(`^[a-z0-9_\-\s]{1,40}\s+(inflow|outflow|spent|spend|balance|net)\s*\?*$`)
	metricWordRe  = regexp.MustCompile(`\b(inflow|outflow|spent|spend|balance|net)\b`)
)

// wantsNumberOnly decides whether a single-cashbook answer should be a bare
// number. Multi-cashbook answers always keep the sentence form.
func wantsNumberOnly(normalized string, intent nlu.Intent, multi bool) bool {
	if multi {
		return false
	}
	q := strings.TrimSpace(normalized)
	if q == "" {
		return false
	}

	if answerOnlyRe.MatchString(q) {
		return true
	}
	if onlyNumberRe.MatchString(q) {
		return true
	}

	words := len(strings.Fields(q))
	if shortMetricRe.MatchString(q) {
		return true
	}
	if metricWordRe.MatchString(q) && words <= 5 {
		return true
	}
	if intent.Kind == nlu.KindCount && words <= 6 {
		return true
	}
	if strings.HasSuffix(q, "??") && words <= 4 {
		return true
	}

	return false
}

const (
	countDefaultHint  = " (I used the last 30 days by default. Say “all time” or “this month” if you want.)"
	metricDefaultHint = " (I used the last 30 days by default. Say “all time”, “this month”, or “last 7 days” if you want.)"
)

// Compose renders the deterministic answer for a classified question.
func Compose(normalized string, intent nlu.Intent, blocks []Block, used UsedRange, usedDefault bool) string {
	switch intent.Kind {
	case nlu.KindFull:
		return composeFullDetails(blocks)
	case nlu.KindCount:
		return composeCount(normalized, intent, blocks, used, usedDefault)
	case nlu.KindRecent:
		return composeRecent(blocks)
	case nlu.KindBudget:
		return composeBudget(blocks)
	case nlu.KindCategory:
		return composeCategory(intent, blocks, used, usedDefault)
	case nlu.KindTrend:
		return composeTrend(intent, blocks, used, usedDefault)
	}
	return composeMetric(normalized, intent, blocks, used, usedDefault)
}

func composeCount(normalized string, intent nlu.Intent, blocks []Block, used UsedRange, usedDefault bool) string {
	multi := len(blocks) > 1

	rangeSuffix := ""
	if label := used.format(); label != "" {
		rangeSuffix = " " + label
	}
	hint := ""
	if usedDefault {
		hint = countDefaultHint
	}

	if !multi && wantsNumberOnly(normalized, intent, multi) {
		count := 0
		if len(blocks) > 0 && blocks[0].Count != nil {
			count = *blocks[0].Count
		}
		return plainNumber(float64(count))
	}

	var lines []string
	for _, b := range blocks {
		count := 0
		if b.Count != nil {
			count = *b.Count
		}
		if multi {
			lines = append(lines, fmt.Sprintf("In “%s”, you have %d transactions%s.%s", b.Cashbook.Name, count, rangeSuffix, hint))
		} else {
			lines = append(lines, fmt.Sprintf("You have %d transactions in “%s”%s.%s", count, b.Cashbook.Name, rangeSuffix, hint))
		}
	}
	return strings.Join(lines, "\n")
}

func composeRecent(blocks []Block) string {
	multi := len(blocks) > 1
	lines := []string{"Here are the latest transactions:"}
	for _, b := range blocks {
		if multi {
			lines = append(lines, fmt.Sprintf("\nCashbook “%s”:", b.Cashbook.Name))
		}
		if len(b.Recent) == 0 {
			lines = append(lines, "No recent transactions found.")
			continue
		}
		for _, r := range firstN(b.Recent, 5) {
			lines = append(lines, recentLine(r, true))
		}
	}
	return strings.Join(lines, "\n")
}

// recentLine renders one transaction row. The full-details report drops the
// type word because the sign already carries it.
func recentLine(r model.Transaction, withType bool) string {
	sign := "-"
	if r.Type == model.Inflow {
		sign = "+"
	}
	cat := ""
	if c := r.Category(); c != "" {
		cat = fmt.Sprintf(" (%s)", c)
	}
	desc := ""
	if d := r.DisplayDescription(); d != "" {
		desc = fmt.Sprintf(" — %s", d)
	}
	if withType {
		return strings.TrimSpace(fmt.Sprintf("%s: %s%s %s%s%s", r.Date, sign, money(r.Amount), r.Type, cat, desc))
	}
	return strings.TrimSpace(fmt.Sprintf("%s: %s%s%s%s", r.Date, sign, money(r.Amount), cat, desc))
}

func budgetStatusText(status aggregate.BudgetStatus) string {
	switch status {
	case aggregate.OnTrack:
		return "On track"
	case aggregate.OverBudget:
		return "Over budget"
	default:
		return "No budget set"
	}
}

func composeBudget(blocks []Block) string {
	multi := len(blocks) > 1
	lines := []string{"Budget forecast based on your recent spending:"}
	for _, b := range blocks {
		f := b.Forecast
		if f == nil {
			if multi {
				lines = append(lines, fmt.Sprintf("\nCashbook “%s”: No budget data.", b.Cashbook.Name))
			} else {
				lines = append(lines, "No budget data.")
			}
			continue
		}
		base := fmt.Sprintf("%s: projected spending %s this month (avg/day %s)",
			budgetStatusText(f.Status), money(f.ProjectedMonthOutflow), money(f.AvgDailyOutflow))
		if multi {
			lines = append(lines, fmt.Sprintf("\nCashbook “%s”: %s", b.Cashbook.Name, base))
		} else {
			lines = append(lines, base)
		}
		if f.MonthlyBudget > 0 {
			remaining := 0.0
			if f.Remaining != nil {
				remaining = *f.Remaining
			}
			lines = append(lines, fmt.Sprintf("Budget: %s • Remaining: %s", money(f.MonthlyBudget), money(remaining)))
		} else {
			lines = append(lines, "Set a monthly budget in the Report page to track it here.")
		}
	}
	return strings.Join(lines, "\n")
}

func composeCategory(intent nlu.Intent, blocks []Block, used UsedRange, usedDefault bool) string {
	multi := len(blocks) > 1
	inflow := intent.Metric == nlu.MetricInflow
	label := "spending"
	if inflow {
		label = "inflow"
	}
	hint := ""
	if usedDefault {
		hint = metricDefaultHint
	}

	lines := []string{fmt.Sprintf("Category breakdown for %s %s:%s", label, used.format(), hint)}
	for _, b := range blocks {
		if multi {
			lines = append(lines, fmt.Sprintf("\nCashbook “%s”:", b.Cashbook.Name))
		}
		top := topCategories(b.RangeSummary, inflow, 5)
		if len(top) == 0 {
			lines = append(lines, "No category totals found in this range.")
			continue
		}
		for _, c := range top {
			value := c.Outflow
			if inflow {
				value = c.Inflow
			}
			lines = append(lines, fmt.Sprintf("%s: %s", c.Name, money(value)))
		}
	}
	return strings.Join(lines, "\n")
}

// topCategories re-sorts a copy by the requested flow, drops zero entries
// and keeps the top n.
func topCategories(s *aggregate.Snapshot, inflow bool, n int) []aggregate.CategoryTotal {
	if s == nil {
		return nil
	}
	sorted := make([]aggregate.CategoryTotal, len(s.Categories))
	copy(sorted, s.Categories)
	if inflow {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Inflow > sorted[j].Inflow
		})
	}
	var top []aggregate.CategoryTotal
	for _, c := range sorted {
		value := c.Outflow
		if inflow {
			value = c.Inflow
		}
		if value > 0 {
			top = append(top, c)
		}
		if len(top) == n {
			break
		}
	}
	return top
}

func composeTrend(intent nlu.Intent, blocks []Block, used UsedRange, usedDefault bool) string {
	multi := len(blocks) > 1
	inflow := intent.Metric == nlu.MetricInflow
	metricName := "outflow"
	if inflow {
		metricName = "inflow"
	}
	hint := ""
	if usedDefault {
		hint = metricDefaultHint
	}

	lines := []string{fmt.Sprintf("Daily %s trend %s:%s", metricName, used.format(), hint)}
	for _, b := range blocks {
		if multi {
			lines = append(lines, fmt.Sprintf("\nCashbook “%s”:", b.Cashbook.Name))
		}
		var days []aggregate.DailyTotal
		if b.RangeSummary != nil {
			days = b.RangeSummary.Daily
		}
		if len(days) == 0 {
			lines = append(lines, "No daily data in this range.")
			continue
		}
		if len(days) > 7 {
			days = days[len(days)-7:]
		}
		for _, d := range days {
			value := d.Outflow
			if inflow {
				value = d.Inflow
			}
			lines = append(lines, fmt.Sprintf("%s: %s", d.Date, money(value)))
		}
	}
	return strings.Join(lines, "\n")
}

func metricLabel(m nlu.Metric) string {
	switch m {
	case nlu.MetricInflow:
		return "total inflow"
	case nlu.MetricOutflow:
		return "total spending"
	case nlu.MetricNet:
		return "net amount"
	case nlu.MetricTotals:
		return "totals"
	default:
		return "summary"
	}
}

func composeMetric(normalized string, intent nlu.Intent, blocks []Block, used UsedRange, usedDefault bool) string {
	multi := len(blocks) > 1
	numberOnly := wantsNumberOnly(normalized, intent, multi)
	hint := ""
	if usedDefault {
		hint = metricDefaultHint
	}

	if intent.Metric == nlu.MetricBalance {
		lines := []string{"Here’s your balance:"}
		for _, b := range blocks {
			if b.AllTime == nil {
				if multi {
					lines = append(lines, fmt.Sprintf("\nCashbook “%s”: Balance not available.", b.Cashbook.Name))
				} else {
					lines = append(lines, "Balance not available.")
				}
				continue
			}
			sentence := fmt.Sprintf("Balance for “%s” is %s (inflow %s, outflow %s).",
				b.Cashbook.Name, money(b.AllTime.Balance), money(b.AllTime.TotalInflow), money(b.AllTime.TotalOutflow))
			if multi {
				sentence = "\n" + sentence
			}
			lines = append(lines, sentence)
		}
		return strings.Join(lines, "\n")
	}

	rangeSuffix := ""
	if label := used.format(); label != "" {
		rangeSuffix = " " + label
	}
	suffix := rangeSuffix + "." + hint

	switch intent.Metric {
	case nlu.MetricInflow, nlu.MetricOutflow, nlu.MetricNet:
		var lines []string
		for _, b := range blocks {
			if b.RangeSummary == nil {
				continue
			}
			totals := b.RangeSummary.Totals
			value := totals.Net
			switch intent.Metric {
			case nlu.MetricInflow:
				value = totals.Inflow
			case nlu.MetricOutflow:
				value = totals.Outflow
			}
			if numberOnly {
				return plainNumber(value)
			}
			lines = append(lines, fmt.Sprintf("In “%s”, your %s is %s%s",
				b.Cashbook.Name, metricLabel(intent.Metric), money(value), suffix))
		}
		return strings.Join(lines, "\n")

	case nlu.MetricTotals:
		var lines []string
		for _, b := range blocks {
			if b.RangeSummary == nil {
				continue
			}
			totals := b.RangeSummary.Totals
			lines = append(lines, fmt.Sprintf("In “%s”, inflow is %s, outflow is %s, net is %s%s",
				b.Cashbook.Name, money(totals.Inflow), money(totals.Outflow), money(totals.Net), suffix))
		}
		return strings.Join(lines, "\n")
	}

	return composeSummary(blocks)
}

// composeSummary is the generic fallback for questions with no clearer
// metric.
func composeSummary(blocks []Block) string {
	lines := []string{"Here is a quick summary from your cashbook data:"}
	for _, b := range blocks {
		lines = append(lines, fmt.Sprintf("\nCashbook “%s”", b.Cashbook.Name))
		if b.RangeSummary == nil {
			continue
		}
		s := b.RangeSummary
		lines = append(lines, fmt.Sprintf("Range %s → %s: Inflow %s, Outflow %s, Net %s",
			s.Start, s.End, money(s.Totals.Inflow), money(s.Totals.Outflow), money(s.Totals.Net)))
	}
	return strings.Join(lines, "\n")
}

func composeFullDetails(blocks []Block) string {
	lines := []string{"Here are the full details from your cashbook data:"}
	for _, b := range blocks {
		lines = append(lines, fmt.Sprintf("\nCashbook “%s”", b.Cashbook.Name))

		if b.AllTime != nil {
			lines = append(lines, fmt.Sprintf("All time — Balance %s (Inflow %s, Outflow %s)",
				money(b.AllTime.Balance), money(b.AllTime.TotalInflow), money(b.AllTime.TotalOutflow)))
		}

		if b.CountAllTime != nil {
			lines = append(lines, fmt.Sprintf("Transactions — %d total", *b.CountAllTime))
		}

		if b.Last7 != nil {
			lines = append(lines, fmt.Sprintf("Last 7 days (%s → %s) — Inflow %s, Outflow %s, Net %s",
				b.Last7.Start, b.Last7.End, money(b.Last7.Totals.Inflow), money(b.Last7.Totals.Outflow), money(b.Last7.Totals.Net)))
		}

		if b.ThisMonth != nil {
			lines = append(lines, fmt.Sprintf("This month (%s → %s) — Inflow %s, Outflow %s, Net %s",
				b.ThisMonth.Start, b.ThisMonth.End, money(b.ThisMonth.Totals.Inflow), money(b.ThisMonth.Totals.Outflow), money(b.ThisMonth.Totals.Net)))
			if len(b.ThisMonth.Categories) > 0 {
				top := b.ThisMonth.Categories[0]
				if top.Outflow > 0 {
					lines = append(lines, fmt.Sprintf("Top category this month — %s (%s)", top.Name, money(top.Outflow)))
				}
			}
		}

		if b.Forecast != nil && b.Forecast.MonthlyBudget > 0 {
			f := b.Forecast
			remaining := 0.0
			if f.Remaining != nil {
				remaining = *f.Remaining
			}
			lines = append(lines, fmt.Sprintf("Budget — %s. Budget %s, projected spend %s, remaining %s",
				budgetStatusText(f.Status), money(f.MonthlyBudget), money(f.ProjectedMonthOutflow), money(remaining)))
		}

		if len(b.Recent) > 0 {
			lines = append(lines, "Recent transactions:")
			for _, r := range firstN(b.Recent, 5) {
				lines = append(lines, recentLine(r, false))
			}
		} else {
			lines = append(lines, "Recent transactions: none")
		}
	}
	return strings.Join(lines, "\n")
}

func firstN(txns []model.Transaction, n int) []model.Transaction {
	if len(txns) > n {
		return txns[:n]
	}
	return txns
}
