package sqlguard

import (
	"regexp"
	"strings"

	"lumina/internal/domain"
)

// emailPatternRe finds email-shaped tokens inside free text.
var emailPatternRe = regexp.MustCompile(`[^@\s'",]+@[^@\s'",]+\.[^@\s'",]+`)

// possessiveRe finds possessive name tokens like "John's".
var possessiveRe = regexp.MustCompile(`(?i)\b([a-z]+)'s\b`)

// firstPersonTokens mark a question as being about the caller's own data.
var firstPersonTokens = map[string]bool{
	"my": true, "me": true, "mine": true, "self": true, "i": true, "i'm": true,
}

// possessiveStopwords are possessive-looking contractions and impersonal
// nouns that must not be read as another person's name.
var possessiveStopwords = map[string]bool{
	"what": true, "who": true, "it": true, "that": true, "there": true,
	"let": true, "here": true, "one": true, "everyone": true, "anyone": true,
	"someone": true, "company": true, "team": true, "today": true,
	"yesterday": true, "tomorrow": true, "month": true, "year": true,
	"week": true, "day": true,
}

var wordSplitRe = regexp.MustCompile(`[^a-zA-Z']+`)

// IsSelfReferential classifies a natural-language question as being about
// the caller's own data. Another person's email forces other-referential
// even when first-person tokens are also present; otherwise the caller's own
// email or name, a first-person token, or the absence of any other person's
// pattern classifies the question as self-referential.
func IsSelfReferential(question string, id domain.Identity) bool {
	lower := strings.ToLower(question)
	callerEmail := domain.NormalizeEmail(id.Email)

	for _, m := range emailPatternRe.FindAllString(question, -1) {
		if domain.NormalizeEmail(m) != callerEmail {
			return false
		}
	}

	if callerEmail != "" && strings.Contains(lower, callerEmail) {
		return true
	}

	nameParts := map[string]bool{}
	for _, part := range strings.Fields(strings.ToLower(id.Name)) {
		if len(part) >= 3 {
			nameParts[part] = true
			if strings.Contains(lower, part) {
				return true
			}
		}
	}

	for _, m := range possessiveRe.FindAllStringSubmatch(question, -1) {
		base := strings.ToLower(m[1])
		if possessiveStopwords[base] || firstPersonTokens[base] || nameParts[base] {
			continue
		}
		return false
	}

	for _, word := range wordSplitRe.Split(lower, -1) {
		if firstPersonTokens[word] {
			return true
		}
	}

	// No other person's pattern found: treat as self-referential.
	return true
}

// CheckSelfIntent blocks a question before any SQL is generated when the
// selection includes self-scoped-only tables and the question is not about
// the caller's own data. Privileged callers must be filtered out upstream.
func CheckSelfIntent(question string, id domain.Identity, restrictedTables []string) error {
	if len(restrictedTables) == 0 {
		return nil
	}
	if !IsSelfReferential(question, id) {
		return &domain.SelfIntentError{Tables: restrictedTables}
	}
	return nil
}
