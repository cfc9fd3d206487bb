package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// candidatePage is an expanded page with its text already fetched, so the
// strict and lenient passes never hit the page store twice.
type candidatePage struct {
	domain.ScoredPage
	Text string
}

// scoreRule contributes a fixed weight when its pattern matches a sentence.
// Rules are evaluated uniformly in order; add new domain signals here.
type scoreRule struct {
	pattern *regexp.Regexp
	weight  float64
}

var sentenceRules = []scoreRule{
	// Obligation language is the strongest compliance signal.
	{regexp.MustCompile(`(?i)\b(shall|must|will|ensure[sd]?|required?|requires)\b`), 2.0},
	// Deadlines: "14 calendar days", "fourteen (14) business days".
	{regexp.MustCompile(`(?i)\b(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|fourteen|fifteen|twenty|thirty|forty-five|forty|sixty|ninety)\s*(\(\d{1,3}\))?\s*(calendar|business)\s+days?\b`), 3.0},
	{regexp.MustCompile(`(?i)\b(prior[- ]?authoriz\w*|pre[- ]?authoriz\w*|authoriz\w*)\b`), 1.5},
	{regexp.MustCompile(`(?i)\b(hospice|retrospective(ly)?|direct\s+payment|room\s+and\s+board)\b`), 1.5},
	{regexp.MustCompile(`(?i)\b(notif\w+|notice|claims?|members?)\b`), 1.0},
	{regexp.MustCompile(`(?i)\bexplanation\s+of\s+benefits\b|\beob\b`), 1.5},
	{regexp.MustCompile(`(?i)\b(coverage|covered|benefits?|plan|policy|provision)\b`), 0.5},
}

const (
	shortSentenceChars   = 30
	longSentenceChars    = 500
	shortSentencePenalty = -1.5
	longSentencePenalty  = -1.0
	numberEchoBonus      = 2.0

	strictScoreMin    = 0.0  // strict mode keeps score > this
	lenientScoreMin   = -1.0 // lenient mode keeps score >= this
	lenientScoreFloor = 0.05 // lenient combined scores are floored here
)

// harvestPolicy selects the strict or lenient harvesting behavior. Lenient
// keeps everything strict keeps, so falling back can only add evidence.
type harvestPolicy struct {
	keep  func(score float64) bool
	floor float64
}

func strictPolicy() harvestPolicy {
	return harvestPolicy{
		keep: func(score float64) bool { return score > strictScoreMin },
	}
}

func lenientPolicy() harvestPolicy {
	return harvestPolicy{
		keep:  func(score float64) bool { return score >= lenientScoreMin },
		floor: lenientScoreFloor,
	}
}

// Sentence boundaries: terminal punctuation followed by whitespace and a
// capital letter or opening parenthesis.
var sentenceBoundary = regexp.MustCompile(`[.?!]\s+[A-Z(]`)

// splitSentences segments page text on punctuation boundaries. When nothing
// splits, the whole page counts as one sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	bounds := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(bounds) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(bounds)+1)
	start := 0
	for _, b := range bounds {
		// Cut just after the punctuation mark; the capital begins the
		// next sentence.
		end := b[0] + 1
		sentence := strings.TrimSpace(text[start:end])
		if sentence != "" {
			out = append(out, sentence)
		}
		start = b[1] - 1
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// scoreSentence applies the rule battery plus length penalties and the
// question-number echo bonus.
func scoreSentence(sentence string, qNums []*regexp.Regexp) float64 {
	var score float64
	for _, rule := range sentenceRules {
		if rule.pattern.MatchString(sentence) {
			score += rule.weight
		}
	}

	if len(sentence) < shortSentenceChars {
		score += shortSentencePenalty
	}
	if len(sentence) > longSentenceChars {
		score += longSentencePenalty
	}

	for _, num := range qNums {
		if num.MatchString(sentence) {
			score += numberEchoBonus
			break
		}
	}
	return score
}

func truncateSentence(sentence string, maxChars int) string {
	if maxChars > 0 && len(sentence) > maxChars {
		return cutAtRuneBoundary(sentence, maxChars)
	}
	return sentence
}

// cutAtRuneBoundary truncates s to at most max bytes without splitting a
// multi-byte rune. Policy text carries smart quotes and similar characters;
// a naive byte slice would leak invalid UTF-8 into the packed context.
func cutAtRuneBoundary(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// harvestEvidence scores every sentence of every candidate page, keeps the
// ones the policy admits, windows each survivor with its neighboring
// sentences and returns deduplicated blocks sorted by combined score.
func harvestEvidence(pages []candidatePage, qNums []*regexp.Regexp, policy harvestPolicy, p EngineParams) []domain.EvidenceBlock {
	var blocks []domain.EvidenceBlock

	for _, page := range pages {
		sentences := splitSentences(page.Text)
		if len(sentences) == 0 {
			continue
		}

		truncated := make([]string, len(sentences))
		for i, sentence := range sentences {
			truncated[i] = truncateSentence(sentence, p.MaxSentChars)
		}

		for i := range sentences {
			score := scoreSentence(truncated[i], qNums)
			if !policy.keep(score) {
				continue
			}

			lo := i - p.SentWindow
			if lo < 0 {
				lo = 0
			}
			hi := i + p.SentWindow
			if hi > len(sentences)-1 {
				hi = len(sentences) - 1
			}

			combined := score + page.BaseScore
			if policy.floor > 0 && combined < policy.floor {
				combined = policy.floor
			}

			blocks = append(blocks, domain.EvidenceBlock{
				DocumentID: page.DocumentID,
				Page:       page.Page,
				Text:       strings.Join(truncated[lo:hi+1], " "),
				Score:      combined,
			})
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Score != blocks[j].Score {
			return blocks[i].Score > blocks[j].Score
		}
		if blocks[i].DocumentID != blocks[j].DocumentID {
			return blocks[i].DocumentID < blocks[j].DocumentID
		}
		return blocks[i].Page < blocks[j].Page
	})

	return dedupBlocks(blocks, p.DedupPrefixChars)
}

// dedupBlocks keeps the first occurrence per (document, page, leading text)
// key; since input is score-descending that is also the highest-scoring one.
func dedupBlocks(blocks []domain.EvidenceBlock, prefixChars int) []domain.EvidenceBlock {
	if len(blocks) == 0 {
		return blocks
	}

	seen := make(map[string]struct{}, len(blocks))
	out := make([]domain.EvidenceBlock, 0, len(blocks))
	for _, block := range blocks {
		key := blockKey(block, prefixChars)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, block)
	}
	return out
}

func blockKey(block domain.EvidenceBlock, prefixChars int) string {
	lead := cutAtRuneBoundary(strings.ToLower(block.Text), prefixChars)
	return fmt.Sprintf("%s|%d|%s", block.DocumentID, block.Page, lead)
}
