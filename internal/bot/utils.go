package bot

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// The keyword must be followed by a separator or end of input. An ASCII \b
// does not work here because Cyrillic letters are not word characters to RE2.
var inlinePrefixPattern = regexp.MustCompile(`^[+\-/]?(?:rep|реп|r)(?:[\s:]+|$)`)

// splitArgs splits a command argument string on whitespace and commas,
// honoring double quotes so multi-word group titles survive as one token.
func splitArgs(s string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
	)

	flush := func() {
		if current.Len() > 0 {
			args = append(args, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t' || r == '\n' || r == ','):
			flush()
		default:
			current.WriteRune(r)
		}
	}

	flush()

	return args
}

// parseRepArguments splits "/rep" arguments into the target and an optional
// group filter. Everything past the first token is the group query, so both
// `/rep @user "My Group"` and `/rep @user My Group` work.
func parseRepArguments(args string) (target, chatQuery string) {
	tokens := splitArgs(args)
	if len(tokens) == 0 {
		return "", ""
	}

	target = tokens[0]
	if len(tokens) > 1 {
		chatQuery = strings.Join(tokens[1:], " ")
	}

	return target, chatQuery
}

// parseInlineQuery extracts the lookup target and an optional group query
// from an inline query, tolerating an optional "rep"/"r" prefix copied from
// chat usage. The group query follows the target, like /rep arguments.
func parseInlineQuery(query string) (target, chatQuery string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ""
	}

	stripped := inlinePrefixPattern.ReplaceAllString(strings.ToLower(query), "")

	tokens := splitArgs(stripped)
	if len(tokens) == 0 {
		return "", ""
	}

	target = tokens[0]
	if len(tokens) > 1 {
		chatQuery = strings.Join(tokens[1:], " ")
	}

	return target, chatQuery
}

// parseDetailCallback decodes "detail:<target>:<chat id or all>" callback
// data. A nil chat id means the lookup is global.
func parseDetailCallback(data string) (target string, chatID *int64, ok bool) {
	rest := strings.TrimPrefix(data, CallbackPrefixDetail)

	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return "", nil, false
	}

	target = rest[:idx]
	scope := rest[idx+1:]

	if scope == CallbackScopeAll {
		return target, nil, true
	}

	id, err := strconv.ParseInt(scope, 10, 64)
	if err != nil {
		return "", nil, false
	}

	return target, &id, true
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit]) + "…"
}
