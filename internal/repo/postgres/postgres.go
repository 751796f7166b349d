package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leolynk/leolynk/internal/observability"
	"github.com/leolynk/leolynk/internal/utils"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type base struct {
	db   DB
	prom *observability.Prom
}

func (b base) observe(op string, fn func() error) error {
	if b.prom != nil {
		return b.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// where collects AND-ed conditions with positional args.
type where struct {
	conds []string
	args  []any
}

// add appends a condition; every %d in format receives the next arg position.
func (w *where) add(format string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, strings.ReplaceAll(format, "%d", fmt.Sprint(len(w.args))))
}

// keyset adds the DESC keyset condition for rows older than (at, id).
func (w *where) keyset(col string, at time.Time, id string) {
	if id == "" {
		return
	}
	w.args = append(w.args, at, id)
	n := len(w.args)
	w.conds = append(w.conds, fmt.Sprintf("(%s, id) < ($%d, $%d)", col, n-1, n))
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *where) limit(n int) string {
	w.args = append(w.args, n)
	return fmt.Sprintf(" LIMIT $%d", len(w.args))
}

// page trims the extra limit+1 row and builds the next cursor from the last kept row.
func page[T any](items []T, limit int, key func(T) (time.Time, string)) ([]T, *string, bool, error) {
	if len(items) <= limit {
		return items, nil, false, nil
	}
	items = items[:limit]
	at, id := key(items[len(items)-1])

	cur, err := utils.EncodeCursor(at, id)
	if err != nil {
		return nil, nil, false, err
	}
	return items, &cur, true, nil
}

// jsonText maps a raw JSON request value to a TEXT column value; absent or null stays NULL.
func jsonText(raw json.RawMessage) *string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return &trimmed
}

func rawJSON(s *string) json.RawMessage {
	if s == nil || *s == "" {
		return nil
	}
	return json.RawMessage(*s)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type scanner interface {
	Scan(dest ...any) error
}
