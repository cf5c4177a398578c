package nlu

import (
	"regexp"
	"strconv"

	"github.com/hisabkitab/hisab/internal/model"
)

// maxRangeDays caps any resolved range at one year plus a leap day,
// measured backward from the later date.
const maxRangeDays = 366

// Range is a resolved inclusive calendar-day interval. Explicit is false
// only when no temporal phrase matched and the default trailing window was
// used, so callers can disclose the assumption.
type Range struct {
	Start    model.Day
	End      model.Day
	Explicit bool
}

// Days returns the inclusive day count of the range, minimum 1.
func (r Range) Days() int {
	n := r.Start.DaysUntil(r.End) + 1
	if n < 1 {
		return 1
	}
	return n
}

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	lastNDaysRe = regexp.MustCompile(`last\s+(\d{1,3})\s+days`)

	todayRe     = regexp.MustCompile(`\btoday\b`)
	yesterdayRe = regexp.MustCompile(`\byesterday\b`)
	lastWeekRe  = regexp.MustCompile(`\blast 7\b|\bpast week\b|\blast week\b`)
	lastMonthWindowRe = regexp.MustCompile(`\blast 30\b|\bpast month\b`)
	thisMonthRe = regexp.MustCompile(`\bthis month\b`)
	lastCalMonthRe = regexp.MustCompile(`\blast month\b`)
)

// ResolveRange converts a normalized question into a concrete day range.
// Rules are tried in priority order; the first match wins. When nothing
// matches, the trailing 30-day window ending today is returned with
// Explicit=false.
func ResolveRange(normalized string, today model.Day) Range {
	// 1. Explicit YYYY-MM-DD tokens.
	if dates := isoDateRe.FindAllString(normalized, -1); len(dates) > 0 {
		start, err := model.ParseDay(dates[0])
		if err == nil {
			end := start
			if len(dates) > 1 {
				if e, err2 := model.ParseDay(dates[1]); err2 == nil {
					end = e
				}
			}
			start, end = clampRange(start, end)
			return Range{Start: start, End: end, Explicit: true}
		}
		// Malformed explicit dates fall through to the default window.
		return defaultRange(today)
	}

	// 2-3. Single-day literals.
	if todayRe.MatchString(normalized) {
		return Range{Start: today, End: today, Explicit: true}
	}
	if yesterdayRe.MatchString(normalized) {
		y := today.AddDays(-1)
		return Range{Start: y, End: y, Explicit: true}
	}

	// 4. "last N days".
	if m := lastNDaysRe.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			n = 1
		}
		if n > maxRangeDays {
			n = maxRangeDays
		}
		return Range{Start: today.AddDays(-(n - 1)), End: today, Explicit: true}
	}

	// 5-6. Trailing windows.
	if lastWeekRe.MatchString(normalized) {
		return Range{Start: today.AddDays(-6), End: today, Explicit: true}
	}
	if lastMonthWindowRe.MatchString(normalized) {
		return Range{Start: today.AddDays(-29), End: today, Explicit: true}
	}

	// 7. Current month to date.
	if thisMonthRe.MatchString(normalized) {
		return Range{Start: today.StartOfMonth(), End: today, Explicit: true}
	}

	// 8. Full previous calendar month.
	if lastCalMonthRe.MatchString(normalized) {
		prevEnd := today.StartOfMonth().AddDays(-1)
		return Range{Start: prevEnd.StartOfMonth(), End: prevEnd, Explicit: true}
	}

	// 9. Default.
	return defaultRange(today)
}

func defaultRange(today model.Day) Range {
	return Range{Start: today.AddDays(-29), End: today, Explicit: false}
}

// ClampRange orders two endpoints and trims the span to one year, keeping
// the later date fixed. Used for ranges that arrive from outside the text
// rules, such as planner output.
func ClampRange(start, end model.Day) (model.Day, model.Day) {
	return clampRange(start, end)
}

// clampRange orders the endpoints and trims the span to maxRangeDays
// measured backward from the later date.
func clampRange(start, end model.Day) (model.Day, model.Day) {
	if start.After(end) {
		start, end = end, start
	}
	if start.DaysUntil(end)+1 > maxRangeDays {
		start = end.AddDays(-(maxRangeDays - 1))
	}
	return start, end
}
