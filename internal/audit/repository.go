package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Decision is one served solvency decision, kept for review and audit.
type Decision struct {
	ID          string    `json:"id"`
	ClientID    int       `json:"client_id"`
	Label       int       `json:"label"`
	Probability float64   `json:"probability"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository persists the decision audit trail
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record stores one served decision.
func (r *Repository) Record(ctx context.Context, clientID, label int, probability float64) error {
	query := `
		INSERT INTO audit.decisions (
			id, client_id, label, probability, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		uuid.New().String(), clientID, label, probability, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	return nil
}

// RecentByClient retrieves the latest decisions served for a client.
func (r *Repository) RecentByClient(ctx context.Context, clientID, limit int) ([]Decision, error) {
	query := `
		SELECT id, client_id, label, probability, created_at
		FROM audit.decisions
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.ClientID, &d.Label, &d.Probability, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}
