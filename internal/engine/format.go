package engine

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// sqliteTimeLayout is the layout the SQLite driver writes time values in.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return nullText
	case string:
		return val
	case []byte:
		return formatBytes(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return val.Format(sqliteTimeLayout)
	default:
		return fmt.Sprint(val)
	}
}

// formatFloat keeps a trailing ".0" on integral values so REAL columns stay
// distinguishable from INTEGER ones. Very small and very large magnitudes
// switch to exponent notation.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatBytes renders a blob as a bytes literal, b'..', escaping quotes,
// backslashes and non-printable bytes.
func formatBytes(b []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(b, '\'') >= 0 && bytes.IndexByte(b, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(b) + 3)
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < ' ' || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
