package client

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fenggwsx/SlashSQL/internal/storage"
)

const commandPrefix = "/"

// sqlKeywords are offered for completion in the case the user started typing.
var sqlKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER",
	"FROM", "WHERE", "INTO", "VALUES", "SET", "TABLE", "INDEX", "VIEW",
	"ORDER", "GROUP", "BY", "HAVING", "LIMIT", "OFFSET", "DISTINCT",
	"JOIN", "LEFT", "INNER", "ON", "AS", "AND", "OR", "NOT", "NULL",
	"LIKE", "IN", "IS", "EXISTS", "IF", "COUNT", "PRIMARY", "KEY",
	"INTEGER", "TEXT", "DEFAULT", "BEGIN", "COMMIT", "ROLLBACK",
}

type completionKind int

const (
	kindCommand completionKind = iota
	kindKeyword
	kindTable
)

func (k completionKind) String() string {
	switch k {
	case kindCommand:
		return "command"
	case kindTable:
		return "table"
	default:
		return "keyword"
	}
}

type candidate struct {
	text string
	kind completionKind
	help string
}

// completions returns the word under completion, where it starts in value
// and every candidate it prefixes. Slash commands are only offered for the
// first word; SQL keywords and table names everywhere else.
func (a *App) completions(value string) (string, int, []candidate) {
	start := strings.LastIndexFunc(value, isWordBoundary) + 1
	word := value[start:]
	if word == "" {
		return "", start, nil
	}

	var out []candidate
	if strings.HasPrefix(word, commandPrefix) {
		if start != 0 {
			return word, start, nil
		}
		for _, c := range a.commands {
			if hasPrefixFold(c.trigger, word) {
				out = append(out, candidate{text: c.trigger, kind: kindCommand, help: c.description})
			}
		}
		return word, start, out
	}
	if strings.HasPrefix(value, commandPrefix) {
		return word, start, nil
	}

	lower := isLowerWord(word)
	for _, kw := range sqlKeywords {
		if hasPrefixFold(kw, word) {
			if lower {
				kw = strings.ToLower(kw)
			}
			out = append(out, candidate{text: kw, kind: kindKeyword})
		}
	}
	for _, rel := range storage.Relations {
		if hasPrefixFold(rel, word) {
			out = append(out, candidate{text: rel, kind: kindTable})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].kind > out[j].kind })
	return word, start, out
}

// handleTabCompletion extends the word before the cursor to the longest
// prefix all candidates share. A unique SQL word also gets a trailing space.
func (a *App) handleTabCompletion() {
	value := a.input.Value()
	if a.input.Position() != utf8.RuneCountInString(value) {
		return
	}

	word, start, matches := a.completions(value)
	if len(matches) == 0 {
		return
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.text
	}
	completed := commonPrefixFold(texts)
	if len(matches) == 1 && matches[0].kind != kindCommand {
		completed += " "
	}
	if len(completed) <= len(word) {
		return
	}

	a.input.SetValue(value[:start] + completed)
	a.input.CursorEnd()
}

// commonPrefixFold returns the longest case-insensitive common prefix, spelled
// as in the first value.
func commonPrefixFold(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := []rune(values[0])
	for _, v := range values[1:] {
		runes := []rune(v)
		n := 0
		for n < len(prefix) && n < len(runes) && unicode.ToLower(prefix[n]) == unicode.ToLower(runes[n]) {
			n++
		}
		prefix = prefix[:n]
	}
	return string(prefix)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isLowerWord(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) < 0
}

func isWordBoundary(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("(),;=<>*.'\"", r)
}
