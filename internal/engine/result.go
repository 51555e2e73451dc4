package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoResults is sent instead of an empty table.
const NoResults = "No results found"

const (
	columnSeparator = " | "
	nullText        = "NULL"
)

// Result is the outcome of one command, rendered as the text sent back to
// the client.
type Result interface {
	Render() string
}

// StatementResult reports how many rows a statement changed.
type StatementResult struct {
	RowsAffected int64
}

// Render implements Result.
func (r StatementResult) Render() string {
	return fmt.Sprintf("done (%d rows affected)", r.RowsAffected)
}

// QueryResult holds the columns and rows returned by a query.
type QueryResult struct {
	Columns []string
	Rows    [][]interface{}
}

// Render formats the result set as a header, a dash separator as long as the
// header, and one line per row. Absent values render as NULL.
func (r QueryResult) Render() string {
	if len(r.Rows) == 0 {
		return NoResults
	}

	var b strings.Builder
	header := strings.Join(r.Columns, columnSeparator)
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", utf8.RuneCountInString(header)))
	b.WriteByte('\n')

	cells := make([]string, 0, len(r.Columns))
	for _, row := range r.Rows {
		cells = cells[:0]
		for _, v := range row {
			cells = append(cells, formatValue(v))
		}
		b.WriteString(strings.Join(cells, columnSeparator))
		b.WriteByte('\n')
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// ErrorResult carries a failure back to the client as data.
type ErrorResult struct {
	Message string
}

// Render implements Result.
func (r ErrorResult) Render() string {
	return "Error: " + r.Message
}
