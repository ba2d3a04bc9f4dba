package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                uuid.UUID
	CustomerName      string
	ContactNumber     string
	Email             *string
	DeviceType        string
	DeviceModel       string
	IssueReported     string
	Status            string
	AssignedTo        *uuid.UUID
	QuotedAmountCents *int64
	FirstContactAt    *time.Time
	RepairStartedAt   *time.Time
	RepairCompletedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const leadColumns = `
	id, customer_name, contact_number, email, device_type, device_model, issue_reported,
	status, assigned_to, quoted_amount_cents,
	first_contact_at, repair_started_at, repair_completed_at, created_at, updated_at`

// leadRowScanner is satisfied by pgx.Rows and pgx.Row so scanLead can be
// shared between single-row and multi-row queries.
type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s leadRowScanner) (Lead, error) {
	var lead Lead
	err := s.Scan(
		&lead.ID, &lead.CustomerName, &lead.ContactNumber, &lead.Email,
		&lead.DeviceType, &lead.DeviceModel, &lead.IssueReported,
		&lead.Status, &lead.AssignedTo, &lead.QuotedAmountCents,
		&lead.FirstContactAt, &lead.RepairStartedAt, &lead.RepairCompletedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

type CreateLeadParams struct {
	CustomerName      string
	ContactNumber     string
	Email             *string
	DeviceType        string
	DeviceModel       string
	IssueReported     string
	AssignedTo        *uuid.UUID
	QuotedAmountCents *int64
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			customer_name, contact_number, email, device_type, device_model, issue_reported,
			assigned_to, quoted_amount_cents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING`+leadColumns,
		params.CustomerName, params.ContactNumber, params.Email,
		params.DeviceType, params.DeviceModel, params.IssueReported,
		params.AssignedTo, params.QuotedAmountCents,
	)

	lead, err := scanLead(row)
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// UpdateLeadParams carries a partial update. Only fields with their Set flag
// raised are written; status and SLA timestamps are never touched here, they
// belong to UpdateStatus.
type UpdateLeadParams struct {
	CustomerName         *string
	ContactNumber        *string
	Email                *string
	EmailSet             bool
	DeviceModel          *string
	IssueReported        *string
	AssignedTo           *uuid.UUID
	AssignedToSet        bool
	QuotedAmountCents    *int64
	QuotedAmountCentsSet bool
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	args = append(args, id)

	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.CustomerName != nil {
		addSet("customer_name", *params.CustomerName)
	}
	if params.ContactNumber != nil {
		addSet("contact_number", *params.ContactNumber)
	}
	if params.EmailSet {
		addSet("email", params.Email)
	}
	if params.DeviceModel != nil {
		addSet("device_model", *params.DeviceModel)
	}
	if params.IssueReported != nil {
		addSet("issue_reported", *params.IssueReported)
	}
	if params.AssignedToSet {
		addSet("assigned_to", params.AssignedTo)
	}
	if params.QuotedAmountCentsSet {
		addSet("quoted_amount_cents", params.QuotedAmountCents)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")

	row := r.pool.QueryRow(ctx,
		`UPDATE leads SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING`+leadColumns,
		args...,
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// Delete removes the lead and returns its final state so callers can emit a
// change event carrying the before snapshot.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM leads WHERE id = $1 RETURNING`+leadColumns, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

type ListParams struct {
	Status     string
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, error) {
	if params.Limit < 1 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.AssignedTo != nil {
		args = append(args, *params.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	query := `SELECT` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, params.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, params.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
