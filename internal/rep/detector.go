// Package rep implements the reputation-signal extraction engine.
//
// The engine scans free-form chat messages for "+rep" / "-реп" style
// mentions and turns them into structured, deduplicated records. It is a
// pure function of its input: no I/O, no shared state, safe for concurrent
// use from any number of ingestion goroutines.
package rep

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Sentiment is the binary classification of a reputation signal.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

// ParsedMention is a single (target, sentiment) pair extracted from one
// message. Targets are normalized; within one extraction call each target
// appears at most once.
type ParsedMention struct {
	Target    string
	Sentiment Sentiment
}

// triggerKeywords gate the expensive regex passes: a message that contains
// none of these substrings (case-insensitive) is skipped entirely.
var triggerKeywords = []string{"rep", "реп", "репутация", "репу"}

// RE2 has an ASCII-only \b and \w, so Unicode word characters and keyword
// boundaries are spelled out. The boundary class consumes one separator
// character, which the \s* runs around it absorb.
const (
	targetChars  = `[\p{L}\p{N}_]{3,64}`
	keywordShort = `(?:rep|реп)`
	keywordLong  = `(?:репу|репутац(?:ию|ия))`
	keywordAny   = `(?:rep|реп|репу|репутац(?:ию|ия))`
	wordBreak    = `(?:[^\p{L}\p{N}_]|$)`
)

var (
	signBeforePattern = regexp.MustCompile(`(?i)(?P<sign>[+-]+)\s*` + keywordShort + wordBreak + `\s*(?P<target>@?` + targetChars + `)`)
	signAfterPattern  = regexp.MustCompile(`(?i)(?P<target>@?` + targetChars + `)\s*(?P<sign>[+-]+)\s*` + keywordAny + wordBreak)
	longFormPattern   = regexp.MustCompile(`(?i)(?P<sign>[+-]+)\s*` + keywordLong + wordBreak + `\s*(?P<target>@?` + targetChars + `)`)

	// signOnlyPattern matches a sign-run plus keyword with no target; used by
	// the reply-context fallback in BuildEntries.
	signOnlyPattern = regexp.MustCompile(`(?i)(?P<sign>[+-]+)\s*` + keywordAny + wordBreak)

	// tokenPattern recognizes the two token kinds of the balancing pass:
	// a sign-run+keyword token or a bare @mention token.
	tokenPattern = regexp.MustCompile(`(?i)(?P<sign>[+-]+)\s*` + keywordAny + wordBreak + `|(?P<mention>@` + targetChars + `)`)
)

// mentionPatterns are applied in order; all of them scan the full text.
var mentionPatterns = []*regexp.Regexp{signBeforePattern, signAfterPattern, longFormPattern}

// NormalizeTarget canonicalizes a mention or username into a stable target
// key: surrounding whitespace trimmed, a single leading @ stripped, Unicode
// case folded. Idempotent.
func NormalizeTarget(raw string) string {
	target := strings.TrimSpace(raw)
	target = strings.TrimPrefix(target, "@")

	return cases.Fold().String(target)
}

// resolveSentiment turns a run of +/- characters into a sentiment by
// majority count. Ties resolve to positive.
func resolveSentiment(sign string) Sentiment {
	if strings.Count(sign, "+") >= strings.Count(sign, "-") {
		return SentimentPositive
	}

	return SentimentNegative
}

// resultSet accumulates (target, sentiment) registrations. Insertion order
// is the first time a target was seen; a later registration with a distinct
// sentiment overwrites the value in place.
type resultSet struct {
	order      []string
	sentiments map[string]Sentiment
}

func newResultSet() *resultSet {
	return &resultSet{sentiments: make(map[string]Sentiment)}
}

func (r *resultSet) register(target string, sentiment Sentiment) {
	existing, seen := r.sentiments[target]
	if seen && existing == sentiment {
		return
	}

	if !seen {
		r.order = append(r.order, target)
	}

	r.sentiments[target] = sentiment
}

func (r *resultSet) mentions() []ParsedMention {
	if len(r.order) == 0 {
		return nil
	}

	out := make([]ParsedMention, 0, len(r.order))
	for _, target := range r.order {
		out = append(out, ParsedMention{Target: target, Sentiment: r.sentiments[target]})
	}

	return out
}

// Extract finds all reputation mentions in text. It runs the fixed pattern
// families first, then the token-stream balancing pass over the same result
// set. The returned slice preserves first-seen target order.
func Extract(text string) []ParsedMention {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	if !slices.ContainsFunc(triggerKeywords, func(kw string) bool { return strings.Contains(lowered, kw) }) {
		return nil
	}

	res := newResultSet()

	for _, pattern := range mentionPatterns {
		signIdx := pattern.SubexpIndex("sign")
		targetIdx := pattern.SubexpIndex("target")

		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			rawTarget := m[targetIdx]
			if rawTarget == "" {
				continue
			}

			res.register(NormalizeTarget(rawTarget), resolveSentiment(m[signIdx]))
		}
	}

	balanceTokens(text, res)

	return res.mentions()
}

// balanceTokens handles multi-mention constructs the fixed patterns cannot
// fully capture ("+rep @A @B -rep @C"). It walks sign tokens and bare
// mentions left to right: a sign token resolves every pending mention and
// becomes the current sign for subsequent mentions; mentions seen before any
// sign stay pending until a sign arrives. Mentions still pending at the end
// of the text are dropped.
func balanceTokens(text string, res *resultSet) {
	signIdx := tokenPattern.SubexpIndex("sign")
	mentionIdx := tokenPattern.SubexpIndex("mention")

	var (
		pending  []string
		current  Sentiment
		haveSign bool
	)

	for _, tok := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if sign := tok[signIdx]; sign != "" {
			sentiment := resolveSentiment(sign)

			for _, mention := range pending {
				res.register(mention, sentiment)
			}

			pending = pending[:0]
			current, haveSign = sentiment, true

			continue
		}

		mention := NormalizeTarget(tok[mentionIdx])

		switch {
		case haveSign:
			res.register(mention, current)
		case !slices.Contains(pending, mention):
			pending = append(pending, mention)
		}
	}
}
