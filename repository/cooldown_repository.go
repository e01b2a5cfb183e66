package repository

import (
	"context"
	"fmt"
	"time"

	"plugbot/database"
	"plugbot/models"
)

// CooldownRepository is the durable start-lock store. Expired rows are
// overwritten in place rather than vacuumed by a background job.
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

func startKey(kind models.GameKind) string {
	return fmt.Sprintf("%s@start", kind)
}

// AcquireStart takes the start lock for a game kind. The insert only
// succeeds when no unexpired lock row exists, so concurrent starts across
// processes race safely on the database.
func (r *CooldownRepository) AcquireStart(ctx context.Context, kind models.GameKind, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO cooldowns (key, expires_at)
		VALUES ($1, NOW() + make_interval(secs => $2))
		ON CONFLICT (key) DO UPDATE
		SET expires_at = EXCLUDED.expires_at
		WHERE cooldowns.expires_at <= NOW()
	`

	result, err := r.q.Exec(ctx, query, startKey(kind), ttl.Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to acquire start lock for %s: %w", kind, err)
	}

	return result.RowsAffected() == 1, nil
}

// IsLocked reports whether the start lock for a game kind is held
func (r *CooldownRepository) IsLocked(ctx context.Context, kind models.GameKind) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM cooldowns
			WHERE key = $1 AND expires_at > NOW()
		)
	`

	var locked bool
	if err := r.q.QueryRow(ctx, query, startKey(kind)).Scan(&locked); err != nil {
		return false, fmt.Errorf("failed to check start lock for %s: %w", kind, err)
	}

	return locked, nil
}

// ClearDisconnect removes a pending disconnect-timeout record for a user
func (r *CooldownRepository) ClearDisconnect(ctx context.Context, userID int64) error {
	query := `DELETE FROM disconnects WHERE user_id = $1`

	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear disconnect record for user %d: %w", userID, err)
	}

	return nil
}
