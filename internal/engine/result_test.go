package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatementResultRender(t *testing.T) {
	assert.Equal(t, "done (0 rows affected)", StatementResult{}.Render())
	assert.Equal(t, "done (12 rows affected)", StatementResult{RowsAffected: 12}.Render())
}

func TestErrorResultRender(t *testing.T) {
	assert.Equal(t, "Error: no such table: t", ErrorResult{Message: "no such table: t"}.Render())
}

func TestQueryResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result QueryResult
		want   string
	}{
		{
			name:   "no rows",
			result: QueryResult{Columns: []string{"x"}},
			want:   "No results found",
		},
		{
			name:   "single column",
			result: QueryResult{Columns: []string{"x"}, Rows: [][]interface{}{{int64(1)}}},
			want:   "x\n-\n1",
		},
		{
			name: "several columns with null",
			result: QueryResult{
				Columns: []string{"username", "login_time", "logout_time"},
				Rows: [][]interface{}{
					{"alice", "2024-01-01 10:00", nil},
					{"bob", "2024-01-02 11:00", "2024-01-02 12:00"},
				},
			},
			want: "username | login_time | logout_time\n" +
				strings.Repeat("-", 35) + "\n" +
				"alice | 2024-01-01 10:00 | NULL\n" +
				"bob | 2024-01-02 11:00 | 2024-01-02 12:00",
		},
		{
			name:   "separator counts characters not bytes",
			result: QueryResult{Columns: []string{"näme"}, Rows: [][]interface{}{{"x"}}},
			want:   "näme\n----\nx",
		},
		{
			name:   "trailing whitespace trimmed",
			result: QueryResult{Columns: []string{"v"}, Rows: [][]interface{}{{"a  "}, {" \n"}}},
			want:   "v\n-\na",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Render())
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "NULL"},
		{"text", "text"},
		{[]byte("blob"), "b'blob'"},
		{[]byte{}, "b''"},
		{[]byte("it's"), `b"it's"`},
		{[]byte(`'"`), `b'\'"'`},
		{[]byte("a\\b\n\x00\xff"), `b'a\\b\n\x00\xff'`},
		{int64(-42), "-42"},
		{float64(1), "1.0"},
		{float64(2.5), "2.5"},
		{float64(1234567), "1234567.0"},
		{float64(1e16), "1e+16"},
		{float64(0.00001), "1e-05"},
		{float64(0), "0.0"},
		{true, "1"},
		{false, "0"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05+00:00"},
		{int32(7), "7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}
