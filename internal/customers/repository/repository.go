package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("customer not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Customer struct {
	ID                 uuid.UUID
	Name               string
	ContactNumber      string
	Email              *string
	LeadID             *uuid.UUID
	LifetimeValueCents int64
	TotalRepairs       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const customerColumns = `
	id, name, contact_number, email, lead_id, lifetime_value_cents, total_repairs,
	created_at, updated_at`

type customerRowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s customerRowScanner) (Customer, error) {
	var c Customer
	err := s.Scan(
		&c.ID, &c.Name, &c.ContactNumber, &c.Email, &c.LeadID,
		&c.LifetimeValueCents, &c.TotalRepairs, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. The unique index on contact_number is the arbiter for the
// concurrent first-conversion race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+customerColumns+` FROM customers WHERE id = $1`, id)
	return r.one(row)
}

func (r *Repository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+customerColumns+` FROM customers WHERE lead_id = $1`, leadID)
	return r.one(row)
}

func (r *Repository) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+customerColumns+` FROM customers WHERE contact_number = $1`, phone)
	return r.one(row)
}

func (r *Repository) one(row pgx.Row) (Customer, error) {
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

type CreateCustomerParams struct {
	Name               string
	ContactNumber      string
	Email              *string
	LeadID             *uuid.UUID
	LifetimeValueCents int64
	TotalRepairs       int
}

func (r *Repository) Create(ctx context.Context, params CreateCustomerParams) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, contact_number, email, lead_id, lifetime_value_cents, total_repairs)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING`+customerColumns,
		params.Name, params.ContactNumber, params.Email, params.LeadID,
		params.LifetimeValueCents, params.TotalRepairs,
	)
	return scanCustomer(row)
}

// IncrementConversion applies one conversion's worth of value to an existing
// customer: lifetime value grows by amountCents and the repair counter by one.
func (r *Repository) IncrementConversion(ctx context.Context, id uuid.UUID, amountCents int64) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers SET
			lifetime_value_cents = lifetime_value_cents + $2,
			total_repairs = total_repairs + 1,
			updated_at = now()
		WHERE id = $1
		RETURNING`+customerColumns,
		id, amountCents,
	)
	return r.one(row)
}

// LinkLead adopts leadID as the customer's canonical source lead if it is
// still unlinked; an already-linked customer keeps its original lead.
func (r *Repository) LinkLead(ctx context.Context, id, leadID uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers SET
			lead_id = COALESCE(lead_id, $2),
			updated_at = now()
		WHERE id = $1
		RETURNING`+customerColumns,
		id, leadID,
	)
	return r.one(row)
}

type ListParams struct {
	Search string
	Limit  int
	Offset int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Customer, error) {
	if params.Limit < 1 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	query := `SELECT` + customerColumns + ` FROM customers`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		query += ` WHERE name ILIKE $1 OR contact_number ILIKE $1`
	}
	args = append(args, params.Limit, params.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
