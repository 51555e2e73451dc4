package command

import (
	"errors"
	"strings"
)

// ErrMultipleStatements is returned for text holding more than one SQL
// statement. The message is sent to clients as is.
var ErrMultipleStatements = errors.New("You can only execute one statement at a time.")

// CheckSingle returns ErrMultipleStatements when anything other than
// whitespace, comments or further semicolons follows the first statement.
func CheckSingle(text string) error {
	end := statementEnd(text)
	if end >= len(text) || onlyTrivia(text[end+1:]) {
		return nil
	}
	return ErrMultipleStatements
}

// FirstStatement returns text up to, but not including, the semicolon that
// ends its first statement.
func FirstStatement(text string) string {
	return text[:statementEnd(text)]
}

// statementEnd returns the index of the semicolon ending the first statement,
// or len(s). Semicolons inside literals, quoted identifiers, comments and
// trigger bodies do not count.
func statementEnd(s string) int {
	trigger := isCreateTrigger(s)
	lastWord := ""
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(s, i, c)
			lastWord = ""
		case c == '[':
			i = skipPast(s, i+1, "]")
			lastWord = ""
		case c == '-' && strings.HasPrefix(s[i:], "--"):
			i = skipPast(s, i+2, "\n")
		case c == '/' && strings.HasPrefix(s[i:], "/*"):
			i = skipPast(s, i+2, "*/")
		case c == ';':
			if !trigger || strings.EqualFold(lastWord, "END") {
				return i
			}
			lastWord = ""
			i++
		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			lastWord = s[i:j]
			i = j
		default:
			if !isSpaceByte(c) {
				lastWord = ""
			}
			i++
		}
	}
	return len(s)
}

func onlyTrivia(s string) bool {
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isSpaceByte(c) || c == ';':
			i++
		case strings.HasPrefix(s[i:], "--"):
			i = skipPast(s, i+2, "\n")
		case strings.HasPrefix(s[i:], "/*"):
			i = skipPast(s, i+2, "*/")
		default:
			return false
		}
	}
	return true
}

// skipQuoted returns the index just past the literal opened at s[start].
// A doubled quote is an escaped quote.
func skipQuoted(s string, start int, quote byte) int {
	for j := start + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func skipPast(s string, from int, closing string) int {
	if from > len(s) {
		return len(s)
	}
	idx := strings.Index(s[from:], closing)
	if idx < 0 {
		return len(s)
	}
	return from + idx + len(closing)
}

func isCreateTrigger(s string) bool {
	words := strings.Fields(strings.ToUpper(s))
	if len(words) < 2 || words[0] != "CREATE" {
		return false
	}
	if words[1] == "TRIGGER" {
		return true
	}
	return len(words) > 2 && (words[1] == "TEMP" || words[1] == "TEMPORARY") && words[2] == "TRIGGER"
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
