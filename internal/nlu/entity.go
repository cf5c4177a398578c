package nlu

import (
	"regexp"
	"strings"

	"github.com/hisabkitab/hisab/internal/model"
)

var (
	allCashbooksRe = regexp.MustCompile(`\ball\s+cashbooks\b|\boverall\b|\bacross\s+all\b`)

	bareNumberRe    = regexp.MustCompile(`\bnumber\b`)
	profileNumberRe = regexp.MustCompile(`\b(phone|mobile|contact)\b`)
	numberContextRe = regexp.MustCompile(`\b(transaction|transactions|inflow|outflow|spent|balance|net|income|expense)\b`)
)

// Clarification is returned when cashbook resolution would be a guess.
// Candidates holds up to two owned cashbook names to offer back.
type Clarification struct {
	Candidates []string
}

// ResolveCashbooks identifies which owned cashbooks a normalized question
// refers to. Resolution order: an "all cashbooks" phrase, name mentions,
// the caller-supplied current cashbook, a sole owned cashbook. When none
// applies a Clarification is returned instead of a guess.
func ResolveCashbooks(normalized string, owned []model.Cashbook, currentCashbookID int64) ([]model.Cashbook, *Clarification) {
	if allCashbooksRe.MatchString(normalized) {
		return owned, nil
	}

	if mentioned := mentionedCashbooks(normalized, owned); len(mentioned) > 0 {
		return mentioned, nil
	}

	if currentCashbookID != 0 {
		for _, cb := range owned {
			if cb.ID == currentCashbookID {
				return []model.Cashbook{cb}, nil
			}
		}
	}

	if len(owned) == 1 {
		return owned[:1], nil
	}

	candidates := make([]string, 0, 2)
	for _, cb := range owned {
		name := strings.TrimSpace(cb.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, name)
		if len(candidates) == 2 {
			break
		}
	}
	return nil, &Clarification{Candidates: candidates}
}

// mentionedCashbooks returns every owned cashbook whose name appears as a
// case-insensitive substring of the question.
func mentionedCashbooks(normalized string, owned []model.Cashbook) []model.Cashbook {
	var hits []model.Cashbook
	for _, cb := range owned {
		name := strings.ToLower(strings.TrimSpace(cb.Name))
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) {
			hits = append(hits, cb)
		}
	}
	return hits
}

// IsAmbiguousNumberQuestion reports whether the question asks for a bare
// "number" without naming a metric or transaction context. Profile
// questions like "phone number" are excluded. Such questions need a
// clarification, not a defaulted metric.
func IsAmbiguousNumberQuestion(normalized string) bool {
	if !bareNumberRe.MatchString(normalized) {
		return false
	}
	if profileNumberRe.MatchString(normalized) {
		return false
	}
	return !numberContextRe.MatchString(normalized)
}
