package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateField selects which timestamp column a date range filters on.
type DateField string

const (
	DateFieldCreated DateField = "created_at"
	DateFieldUpdated DateField = "updated_at"
)

// DateRange is a half-open-on-nothing, inclusive [From, To] window. Either
// bound may be zero to leave that side open.
type DateRange struct {
	Field DateField
	From  time.Time
	To    time.Time
}

// QueryByStatus returns leads whose status is in statuses, optionally bounded
// by a date range. An empty statuses slice matches all statuses.
func (r *Repository) QueryByStatus(ctx context.Context, statuses []string, dr *DateRange) ([]Lead, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if len(statuses) > 0 {
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if dr != nil {
		field := dr.Field
		if field != DateFieldUpdated {
			field = DateFieldCreated
		}
		if !dr.From.IsZero() {
			args = append(args, dr.From)
			where = append(where, fmt.Sprintf("%s >= $%d", field, len(args)))
		}
		if !dr.To.IsZero() {
			args = append(args, dr.To)
			where = append(where, fmt.Sprintf("%s <= $%d", field, len(args)))
		}
	}

	query := `SELECT` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// CountActionable returns the authoritative unread badge count for a viewer:
// leads still awaiting first attention, scoped to the viewer's assignments
// unless they hold a privileged role. The empty-status clause covers rows
// created before the status column had a default.
func (r *Repository) CountActionable(ctx context.Context, viewerID uuid.UUID, privileged bool) (int, error) {
	query := `
		SELECT COUNT(*) FROM leads
		WHERE (status = 'new' OR status = '')`
	args := []any{}

	if !privileged {
		args = append(args, viewerID)
		query += ` AND assigned_to = $1`
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
