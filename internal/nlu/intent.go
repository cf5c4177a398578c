package nlu

import "regexp"

// Kind is the closed set of things a question can ask for.
type Kind int

// Intent kinds, in classification priority order.
const (
	KindFull Kind = iota
	KindRecent
	KindBudget
	KindCategory
	KindTrend
	KindCount
	KindMetric
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindRecent:
		return "recent"
	case KindBudget:
		return "budget"
	case KindCategory:
		return "category"
	case KindTrend:
		return "trend"
	case KindCount:
		return "count"
	case KindMetric:
		return "metric"
	default:
		return "unknown"
	}
}

// Metric narrows a metric, category or trend intent to a single measure.
type Metric string

// Metrics.
const (
	MetricBalance Metric = "balance"
	MetricInflow  Metric = "inflow"
	MetricOutflow Metric = "outflow"
	MetricNet     Metric = "net"
	MetricTotals  Metric = "totals"
	MetricSummary Metric = "summary"
)

// Intent is the classification result. Metric is set for the category,
// trend and metric kinds and empty otherwise.
type Intent struct {
	Metric Metric
	Kind   Kind
}

var (
	fullRe = regexp.MustCompile(`\b(all\s+details|full\s+details|everything|complete\s+details|entire\s+cashbook|full\s+report|complete\s+report|summary\s+report)\b`)

	recentRe = regexp.MustCompile(`\brecent\b|\blast\s+transactions\b|\blatest\b|\bshow\s+last\b`)
	budgetRe = regexp.MustCompile(`\bbudget\b|\bforecast\b|\bprediction\b|\bplan\b`)

	categoryRe = regexp.MustCompile(`\bcategory\b|\btop\s+category\b|\bcategory-wise\b|\bbreakdown\b`)
	trendRe    = regexp.MustCompile(`\btrend\b|\bdaily\b|\bgraph\b|\bchart\b|\bbar\b|\bline\b`)

	countRe = regexp.MustCompile(`\b(how\s+many|count|number\s+of)\s+transactions?\b|\btransactions?\s+count\b|\btransactions?\s+number\b|\btotal\s+transactions?\b`)

	balanceRe = regexp.MustCompile(`\bbalance\b`)
	inflowRe  = regexp.MustCompile(`\binflow\b|\bincome\b|\breceived\b|\bcredit\b|\bdeposited\b`)
	outflowRe = regexp.MustCompile(`\boutflow\b|\bexpense\b|\bspent\b|\bspend\b|\bdebit\b|\bpaid\b`)
	netRe     = regexp.MustCompile(`\bnet\b|\bprofit\b|\bsurplus\b|\bdeficit\b`)
)

// intentRule is one entry of the ordered decision list. The first rule
// whose match function returns ok wins; later rules are never consulted.
type intentRule struct {
	match func(q string) (Intent, bool)
	name  string
}

var intentRules = []intentRule{
	{name: "full", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindFull}, fullRe.MatchString(q)
	}},
	{name: "recent", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindRecent}, recentRe.MatchString(q)
	}},
	{name: "budget", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindBudget}, budgetRe.MatchString(q)
	}},
	{name: "category", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindCategory, Metric: flowMetric(q)}, categoryRe.MatchString(q)
	}},
	{name: "trend", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindTrend, Metric: flowMetric(q)}, trendRe.MatchString(q)
	}},
	{name: "count", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindCount}, countRe.MatchString(q)
	}},
	// Catch-all: every remaining question is a metric question.
	{name: "metric", match: func(q string) (Intent, bool) {
		return Intent{Kind: KindMetric, Metric: classifyMetric(q)}, true
	}},
}

// Classify maps a normalized question to an intent. Evaluation walks the
// ordered rule list so co-occurring triggers resolve deterministically.
func Classify(normalized string) Intent {
	for _, rule := range intentRules {
		if intent, ok := rule.match(normalized); ok {
			return intent
		}
	}
	// Unreachable: the final rule always matches.
	return Intent{Kind: KindMetric, Metric: MetricSummary}
}

// flowMetric picks inflow only when inflow words are present and outflow
// words are absent; category and trend otherwise report spending.
func flowMetric(q string) Metric {
	if inflowRe.MatchString(q) && !outflowRe.MatchString(q) {
		return MetricInflow
	}
	return MetricOutflow
}

// classifyMetric applies the fixed metric precedence: balance beats net
// beats outflow-only beats inflow-only beats both-present, with summary
// as the default.
func classifyMetric(q string) Metric {
	asksInflow := inflowRe.MatchString(q)
	asksOutflow := outflowRe.MatchString(q)

	switch {
	case balanceRe.MatchString(q):
		return MetricBalance
	case netRe.MatchString(q):
		return MetricNet
	case asksOutflow && !asksInflow:
		return MetricOutflow
	case asksInflow && !asksOutflow:
		return MetricInflow
	case asksInflow && asksOutflow:
		return MetricTotals
	default:
		return MetricSummary
	}
}
