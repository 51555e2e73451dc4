// Package command classifies decoded messages as read queries or mutating
// statements.
package command

import (
	"errors"
	"strings"
	"unicode"
)

// Kind distinguishes reads from writes.
type Kind int

const (
	// Statement mutates the store and reports an affected-row count.
	Statement Kind = iota
	// Query reads from the store and reports a result set.
	Query
)

func (k Kind) String() string {
	switch k {
	case Query:
		return "query"
	case Statement:
		return "statement"
	default:
		return "unknown"
	}
}

// ErrEmpty marks a blank message, which ends the connection instead of
// being executed.
var ErrEmpty = errors.New("empty command")

const queryPrefix = "SELECT"

// Command is one classified client message. Text is executed verbatim.
type Command struct {
	Text string
	Kind Kind
}

// Parse classifies message. Blank or whitespace-only input returns ErrEmpty.
func Parse(message string) (Command, error) {
	if strings.TrimSpace(message) == "" {
		return Command{}, ErrEmpty
	}
	return Command{Text: message, Kind: Classify(message)}, nil
}

// Classify reports Query when the trimmed text starts with SELECT, in any
// case, and Statement otherwise.
func Classify(text string) Kind {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(text)), queryPrefix) {
		return Query
	}
	return Statement
}

// Verb returns the upper-cased leading keyword of the command.
func (c Command) Verb() string {
	trimmed := strings.TrimSpace(c.Text)
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ';'
	})
	if end >= 0 {
		trimmed = trimmed[:end]
	}
	return strings.ToUpper(trimmed)
}
