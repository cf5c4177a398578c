// Package nlu contains the heuristic natural-language understanding layer:
// question normalization, intent classification, date-range resolution and
// cashbook entity resolution. Everything here is pure pattern matching over
// a single line of text; for a fixed input the output never varies.
package nlu

import (
	"regexp"
	"strings"
)

// shorthandFixes maps common typos and shorthand to canonical words. Each
// entry is a whole-word substitution; the fixes are independent of one
// another so their order does not matter, and applying them twice yields
// the same result.
var shorthandFixes = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\boutflw\b`), "outflow"},
	{regexp.MustCompile(`\boutflo\b`), "outflow"},
	{regexp.MustCompile(`\boutfloww\b`), "outflow"},
	{regexp.MustCompile(`\binflw\b`), "inflow"},
	{regexp.MustCompile(`\binflo\b`), "inflow"},
	{regexp.MustCompile(`\binfloww\b`), "inflow"},
	{regexp.MustCompile(`\btranscation\b`), "transaction"},
	{regexp.MustCompile(`\btranaction\b`), "transaction"},
	{regexp.MustCompile(`\btrnsaction\b`), "transaction"},
	{regexp.MustCompile(`\bhlo\b`), "hello"},
	{regexp.MustCompile(`\bhlw\b`), "hello"},
	{regexp.MustCompile(`\bhii+\b`), "hi"},
}

// Normalize lower-cases a question and applies the shorthand fixes. It is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	t := strings.ToLower(text)
	for _, fix := range shorthandFixes {
		t = fix.pattern.ReplaceAllString(t, fix.replacement)
	}
	return t
}
