package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError translates constraint violations into common sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return common.ErrAlreadyExists
		case foreignKeyViolation:
			return common.ErrNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// setBuilder accumulates "col = $n" assignments of a dynamic UPDATE.
type setBuilder struct {
	cols []string
	args []any
}

func (b *setBuilder) set(col string, v any) {
	b.args = append(b.args, v)
	b.cols = append(b.cols, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

// optional assigns NULL when clear is set, the value when v is non-nil and
// nothing otherwise.
func (b *setBuilder) optional(col string, v *string, clear bool) {
	switch {
	case clear:
		b.set(col, nil)
	case v != nil:
		b.set(col, *v)
	}
}

func (b *setBuilder) empty() bool {
	return len(b.cols) == 0
}

func (b *setBuilder) update(table, id string) (string, []any) {
	args := append(append([]any{}, b.args...), id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(b.cols, ", "), len(args))
	return query, args
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
