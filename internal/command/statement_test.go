package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSingle(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		single bool
	}{
		{"plain", "SELECT 1", true},
		{"trailing semicolon", "SELECT 1;", true},
		{"trailing semicolons and comments", "SELECT 1; -- done\n ; /* end */ ", true},
		{"two queries", "SELECT 1; SELECT 2", false},
		{"statement then query", "INSERT INTO t VALUES (1); SELECT * FROM t", false},
		{"semicolon in string", "INSERT INTO t VALUES ('a;b')", true},
		{"escaped quote in string", "INSERT INTO t VALUES ('it''s; fine')", true},
		{"semicolon in quoted identifier", `SELECT "a;b", [c;d], ` + "`e;f`" + ` FROM t`, true},
		{"semicolon in comments", "SELECT 1 -- a; b\n/* c; d */", true},
		{"unterminated string", "SELECT 'abc; SELECT 2", true},
		{
			"trigger body",
			"CREATE TRIGGER tr AFTER INSERT ON t BEGIN UPDATE t SET x = 1; DELETE FROM u; END;",
			true,
		},
		{
			"statement after trigger",
			"CREATE TEMP TRIGGER tr AFTER INSERT ON t BEGIN DELETE FROM u; END; DROP TABLE t",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSingle(tt.text)
			if tt.single {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMultipleStatements)
			}
		})
	}
}

func TestFirstStatement(t *testing.T) {
	assert.Equal(t, "SELECT 1", FirstStatement("SELECT 1; SELECT 2"))
	assert.Equal(t, "SELECT ';' AS v ", FirstStatement("SELECT ';' AS v ;"))
	assert.Equal(t, "SELECT 1 -- note", FirstStatement("SELECT 1 -- note"))
}

func TestMultipleStatementsMessage(t *testing.T) {
	assert.Equal(t, "You can only execute one statement at a time.", ErrMultipleStatements.Error())
}
