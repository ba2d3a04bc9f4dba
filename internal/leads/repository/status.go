package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StatusChange is the outcome of UpdateStatus: the lead after the write plus
// the status it held before, captured in the same statement.
type StatusChange struct {
	Lead      Lead
	OldStatus string
}

// UpdateStatus writes the new status and stamps the SLA timestamps the
// transition earns, all in one statement so a concurrent writer can never
// observe the status without its timestamps. The CASE expressions read
// leads.status before the SET applies, which is exactly the old status the
// stamping rules are defined over. Each timestamp is guarded by COALESCE so
// it is set at most once. The rules here must stay in lockstep with
// domain.TransitionStamps; the parity test in the domain package pins both.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (StatusChange, error) {
	row := r.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT status FROM leads WHERE id = $1
		)
		UPDATE leads SET
			status = $2,
			first_contact_at = CASE
				WHEN leads.status = 'new' AND $2 = 'contacted'
				THEN COALESCE(first_contact_at, now())
				ELSE first_contact_at
			END,
			repair_started_at = CASE
				WHEN $2 = 'in_repair'
				THEN COALESCE(repair_started_at, now())
				ELSE repair_started_at
			END,
			repair_completed_at = CASE
				WHEN leads.status = 'in_repair' AND $2 IN ('won', 'completed')
				THEN COALESCE(repair_completed_at, now())
				ELSE repair_completed_at
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING`+leadColumns+`, (SELECT status FROM prev) AS old_status`,
		id, newStatus,
	)

	var change StatusChange
	err := row.Scan(
		&change.Lead.ID, &change.Lead.CustomerName, &change.Lead.ContactNumber, &change.Lead.Email,
		&change.Lead.DeviceType, &change.Lead.DeviceModel, &change.Lead.IssueReported,
		&change.Lead.Status, &change.Lead.AssignedTo, &change.Lead.QuotedAmountCents,
		&change.Lead.FirstContactAt, &change.Lead.RepairStartedAt, &change.Lead.RepairCompletedAt,
		&change.Lead.CreatedAt, &change.Lead.UpdatedAt,
		&change.OldStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusChange{}, ErrNotFound
	}
	if err != nil {
		return StatusChange{}, err
	}
	return change, nil
}
