package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is a persisted activity_log row.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actorId,omitempty"`
	ActorName  string          `json:"actorName"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   uuid.UUID       `json:"entityId"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, actorID *uuid.UUID, actorName, action, entityType string, entityID uuid.UUID, before, after []byte) error {
	if actorName == "" {
		actorName = "system"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_log (actor_id, actor_name, action, entity_type, entity_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		actorID, actorName, action, entityType, entityID, before, after,
	)
	return err
}

// ListByEntity returns the newest-first trail for one entity.
func (r *Repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Record, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, actor_id, actor_name, action, entity_type, entity_id, before, after, created_at
		FROM activity_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		entityType, entityID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.ActorID, &rec.ActorName, &rec.Action,
			&rec.EntityType, &rec.EntityID, &rec.Before, &rec.After, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
