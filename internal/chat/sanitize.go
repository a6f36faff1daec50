package chat

import (
	"regexp"
	"strings"
)

// The model sometimes wraps code in stray pseudo-tags (<b>, </i>, ...) and
// single-asterisk emphasis that survive inside fenced blocks. Clean extracts
// the first fenced block, strips that noise from its body and re-wraps it;
// text without a fenced block passes through untouched.
var (
	fenceRe     = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)\n?(.*?)```")
	pseudoTagRe = regexp.MustCompile(`</?\w+>`)
	emphasisRe  = regexp.MustCompile(`\*([^*\n]+)\*`)
)

func Clean(raw string) string {
	m := fenceRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	lang, body := m[1], m[2]
	body = pseudoTagRe.ReplaceAllString(body, "")
	body = emphasisRe.ReplaceAllString(body, "$1")
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return "```" + lang + "\n" + body + "```"
}
