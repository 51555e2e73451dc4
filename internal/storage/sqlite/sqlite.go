package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fenggwsx/SlashSQL/internal/command"
	"github.com/fenggwsx/SlashSQL/internal/config"
	"github.com/fenggwsx/SlashSQL/internal/logging"
	"github.com/fenggwsx/SlashSQL/internal/storage"
)

// Store is a GORM-backed SQLite implementation of storage.Store. It keeps no
// open handle: each call opens the database file and closes it on return.
type Store struct {
	dsn    string
	logger *slog.Logger
	gormLg logger.Interface
}

var _ storage.Store = (*Store)(nil)

// autocommitVerbs cannot run inside the transaction Exec normally opens.
var autocommitVerbs = map[string]struct{}{
	"BEGIN":     {},
	"COMMIT":    {},
	"END":       {},
	"ROLLBACK":  {},
	"SAVEPOINT": {},
	"RELEASE":   {},
	"VACUUM":    {},
}

// timeDeclTypes are the declared column types the driver parses into
// time.Time.
var timeDeclTypes = map[string]struct{}{
	"DATE":      {},
	"DATETIME":  {},
	"TIMESTAMP": {},
}

const storedTextCTE = "slashsql_stored_text"

// NewStore prepares a store for the database file at cfg.Path.
func NewStore(cfg config.DatabaseConfig, log *slog.Logger) *Store {
	log = logging.OrDiscard(log)

	level := logger.Silent
	if cfg.LogSQL {
		level = logger.Info
	}

	return &Store{
		dsn:    buildDSN(cfg),
		logger: log,
		gormLg: logger.New(gormWriter{log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

func buildDSN(cfg config.DatabaseConfig) string {
	timeout := cfg.BusyTimeout
	if timeout < 0 {
		timeout = 0
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, timeout.Milliseconds())
}

// Initialize creates the users, login_history and file_tracking tables when
// they are missing and commits once.
func (s *Store) Initialize(ctx context.Context) (storage.InitReport, error) {
	var report storage.InitReport
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			for _, rel := range schema {
				existed := tx.Migrator().HasTable(rel.name)
				if err := tx.Exec(rel.ddl).Error; err != nil {
					return fmt.Errorf("create %s: %w", rel.name, err)
				}
				if existed {
					report.Present = append(report.Present, rel.name)
				} else {
					report.Created = append(report.Created, rel.name)
				}
			}
			return nil
		})
	})
	if err != nil {
		return storage.InitReport{}, err
	}
	return report, nil
}

// Exec runs statement and commits it. Transaction-control statements run in
// autocommit mode instead.
func (s *Store) Exec(ctx context.Context, statement string) (int64, error) {
	var affected int64
	err := s.withDB(ctx, func(db *gorm.DB) error {
		if requiresAutocommit(statement) {
			result := db.Exec(statement)
			affected = result.RowsAffected
			return result.Error
		}
		return db.Transaction(func(tx *gorm.DB) error {
			result := tx.Exec(statement)
			if result.Error != nil {
				return result.Error
			}
			affected = result.RowsAffected
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Query runs query and reads the whole result set. Values in columns
// declared DATE, DATETIME or TIMESTAMP keep the text SQLite stored.
func (s *Store) Query(ctx context.Context, query string) (*storage.Rows, error) {
	var out *storage.Rows
	err := s.withDB(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			rows, timeCols, err := readRows(tx, query)
			if err != nil {
				return err
			}
			out = rows
			if len(timeCols) == 0 {
				return nil
			}

			stored, _, err := readRows(tx, storedTextQuery(query, len(rows.Columns), timeCols))
			if err != nil {
				s.logger.Debug("re-read of time columns failed", "error", err)
				return nil
			}
			out.Values = stored.Values
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readRows collects every row of query and the positions of columns the
// driver decodes into time.Time.
func readRows(tx *gorm.DB, query string) (*storage.Rows, []int, error) {
	rows, err := tx.Raw(query).Rows()
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}
	var timeCols []int
	for i, ct := range types {
		if _, ok := timeDeclTypes[strings.ToUpper(ct.DatabaseTypeName())]; ok {
			timeCols = append(timeCols, i)
		}
	}

	out := &storage.Rows{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		out.Values = append(out.Values, values)
	}
	return out, timeCols, rows.Err()
}

// storedTextQuery wraps query in a CTE and selects the time columns through
// unary plus. The expression has no declared type, so the driver hands back
// the stored value untouched.
func storedTextQuery(query string, width int, timeCols []int) string {
	isTime := make(map[int]bool, len(timeCols))
	for _, c := range timeCols {
		isTime[c] = true
	}

	names := make([]string, width)
	exprs := make([]string, width)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
		exprs[i] = names[i]
		if isTime[i] {
			exprs[i] = "+" + names[i]
		}
	}
	return fmt.Sprintf("WITH %s(%s) AS (\n%s\n) SELECT %s FROM %s",
		storedTextCTE, strings.Join(names, ", "), command.FirstStatement(query),
		strings.Join(exprs, ", "), storedTextCTE)
}

func (s *Store) withDB(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, err := gorm.Open(sqlite.Open(s.dsn), &gorm.Config{Logger: s.gormLg})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			s.logger.Warn("close database", "error", err)
		}
	}()

	return fn(db.WithContext(ctx))
}

func requiresAutocommit(statement string) bool {
	trimmed := strings.TrimSpace(statement)
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return unicode.IsSpace(r) || r == ';'
	})
	if end >= 0 {
		trimmed = trimmed[:end]
	}
	_, ok := autocommitVerbs[strings.ToUpper(trimmed)]
	return ok
}

type gormWriter struct {
	logger *slog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}
