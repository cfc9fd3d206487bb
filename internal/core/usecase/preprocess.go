package usecase

import (
	"regexp"
	"strings"
)

// Fixed abbreviation expansions applied to question text before embedding.
// Spelled-out forms match the vocabulary of the indexed policy pages better
// than the shorthand auditors type.
var questionSynonyms = []struct {
	abbrev   string
	expanded string
}{
	{"eob", "explanation of benefits"},
	{"ltc", "long-term care"},
	{"snf", "skilled nursing facility"},
	{"pa", "prior authorization"},
	{"dme", "durable medical equipment"},
	{"er", "emergency room"},
	{"oon", "out of network"},
	{"cob", "coordination of benefits"},
	{"pcp", "primary care provider"},
}

// Boilerplate vocabulary appended to every query to pull generic policy
// language toward the question's neighborhood in embedding space.
const questionBoilerplate = "policy provision coverage requirement member plan"

var wordBoundarySynonyms = buildSynonymPatterns()

func buildSynonymPatterns() []struct {
	re       *regexp.Regexp
	expanded string
} {
	out := make([]struct {
		re       *regexp.Regexp
		expanded string
	}, 0, len(questionSynonyms))
	for _, s := range questionSynonyms {
		out = append(out, struct {
			re       *regexp.Regexp
			expanded string
		}{
			re:       regexp.MustCompile(`\b` + regexp.QuoteMeta(s.abbrev) + `\b`),
			expanded: s.expanded,
		})
	}
	return out
}

// preprocessQuestion lowercases the question, expands domain abbreviations
// in place and appends the boilerplate terms.
func preprocessQuestion(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, s := range wordBoundarySynonyms {
		q = s.re.ReplaceAllString(q, s.expanded)
	}
	return q + " " + questionBoilerplate
}

var bareNumberPattern = regexp.MustCompile(`\b\d{1,4}\b`)

// questionNumbers compiles a matcher for each bare number mentioned in a
// question, e.g. the "14" in "within 14 calendar days". Sentences echoing
// one of these numbers get a scoring bonus.
func questionNumbers(question string) []*regexp.Regexp {
	matches := bareNumberPattern.FindAllString(question, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]*regexp.Regexp, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, regexp.MustCompile(`\b`+m+`\b`))
	}
	return out
}
