package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Profile, greeting and capability questions are answered straight from
// session identity (or one profile lookup) and never consume an LLM call
// or any aggregation work.

var (
	greetingRe = regexp.MustCompile(`^(hi|hello|hey|good\s+morning|good\s+afternoon|good\s+evening)(\b|\s|!|\?)$`)

	nameRe = regexp.MustCompile(`\b(my\s+name|user\s*name|profile\s+name)\b`)

	phoneWordRe     = regexp.MustCompile(`\b(phone|mobile|contact)\b`)
	phoneNumberRe   = regexp.MustCompile(`\b(number|no|num)\b`)
	registeredRe    = regexp.MustCompile(`\b(registered|my|profile)\b`)
	phoneOrMobileRe = regexp.MustCompile(`\b(phone|mobile)\b`)

	emailWordRe = regexp.MustCompile(`\b(mail|email)\b`)
	emailIDRe   = regexp.MustCompile(`\b(id|address)\b`)
	myEmailRe   = regexp.MustCompile(`\bmy\s+(mail|email)\b`)

	capabilitiesRe = regexp.MustCompile(`\b(what\s+can\s+you\s+do|what\s+all\s+can\s+you\s+do|what\s+details|what\s+information|help|commands|examples)\b`)

	aiNoteAskRe   = regexp.MustCompile(`\b(what\s+is\s+this|what\s+does\s+this\s+mean|why\s+is\s+this|explain)\b`)
	aiNoteTopicRe = regexp.MustCompile(`\b(openai|api\s*key|llm|ai\s+answers)\b`)
)

func isGreetingQuestion(normalized string) bool {
	return greetingRe.MatchString(strings.TrimSpace(normalized))
}

func isNameQuestion(normalized string) bool {
	t := strings.TrimSpace(normalized)
	switch t {
	case "name", "my name", "username", "user name":
		return true
	}
	return nameRe.MatchString(t)
}

func isPhoneQuestion(normalized string) bool {
	if phoneWordRe.MatchString(normalized) && phoneNumberRe.MatchString(normalized) {
		return true
	}
	return registeredRe.MatchString(normalized) && phoneOrMobileRe.MatchString(normalized)
}

func isEmailQuestion(normalized string) bool {
	if !emailWordRe.MatchString(normalized) {
		return false
	}
	t := strings.TrimSpace(normalized)
	if t == "mail" || t == "email" {
		return true
	}
	return emailIDRe.MatchString(normalized) || myEmailRe.MatchString(normalized)
}

func isCapabilitiesQuestion(normalized string) bool {
	return capabilitiesRe.MatchString(normalized)
}

func isAINoteQuestion(normalized string) bool {
	return aiNoteAskRe.MatchString(normalized) && aiNoteTopicRe.MatchString(normalized)
}

func capabilitiesAnswer(username string) string {
	namePart := ""
	if username != "" {
		namePart = username + ", "
	}
	return namePart + "I can answer using your cashbook data (only what’s stored in this app). For example:\n" +
		"- balance / inflow / outflow (spent) / net\n" +
		"- last 7 days / this month / last month / custom dates (YYYY-MM-DD)\n" +
		"- top category / category breakdown\n" +
		"- recent transactions\n" +
		"- number of transactions\n" +
		"- budget forecast (if you set a monthly budget in the app)\n\n" +
		"Try: “mar full details”, “spent last 7 days in mar”, “top category this month”, “recent transactions for feb”."
}

func aiNoteAnswer(username string) string {
	namePart := ""
	if username != "" {
		namePart = username + ", "
	}
	return namePart + "that message is about enabling optional AI answers. " +
		"If you set llm.api_key in the config and restart, the assistant can reply more like a chatbot. " +
		"Without it, I still answer using your cashbook database (totals, spending, recent transactions, etc.)."
}

// profileAnswer handles greeting/identity/capability questions. It reports
// ok=false when the question needs the data pipeline instead.
func (r *run) profileAnswer(ctx context.Context) (string, bool, error) {
	t := r.normalized

	if isGreetingQuestion(t) {
		name := r.username(ctx)
		if name == "" {
			name = "there"
		}
		return fmt.Sprintf("Hi %s! Ask me things like “mar inflow”, “spent last 7 days in mar”, or “mar full details”.", name), true, nil
	}

	if isNameQuestion(t) {
		if name := r.username(ctx); name != "" {
			return fmt.Sprintf("Your username is %s.", name), true, nil
		}
		return "I can’t see your username right now, but you can check it in Profile.", true, nil
	}

	if isPhoneQuestion(t) {
		profile, err := r.a.store.GetUserProfile(ctx, r.req.UserID)
		if err == nil && profile.Mobile != "" {
			return fmt.Sprintf("Your registered phone number is %s.", profile.Mobile), true, nil
		}
		return "I can’t see your phone number right now, but you can check it in Profile.", true, nil
	}

	if isEmailQuestion(t) {
		if email := r.email(ctx); email != "" {
			return fmt.Sprintf("Your email id is %s.", email), true, nil
		}
		return "I can’t see your email right now, but you can check it in Profile.", true, nil
	}

	if isAINoteQuestion(t) {
		return aiNoteAnswer(r.username(ctx)), true, nil
	}

	if isCapabilitiesQuestion(t) {
		return capabilitiesAnswer(r.username(ctx)), true, nil
	}

	return "", false, nil
}

// username returns the session username, falling back to one profile
// lookup. The lookup result is memoized for the rest of the request.
func (r *run) username(ctx context.Context) string {
	if r.req.Identity.Username != "" {
		return r.req.Identity.Username
	}
	if p := r.profile(ctx); p != nil {
		return p.Username
	}
	return ""
}

func (r *run) email(ctx context.Context) string {
	if r.req.Identity.Email != "" {
		return r.req.Identity.Email
	}
	if p := r.profile(ctx); p != nil {
		return p.Email
	}
	return ""
}
