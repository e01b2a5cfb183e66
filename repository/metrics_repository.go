package repository

import (
	"context"
	"fmt"

	"plugbot/database"
	"plugbot/models"
	"plugbot/service"

	"github.com/jackc/pgx/v5"
)

// MetricsRepository aggregates historical activity into per-user snapshots
type MetricsRepository struct {
	q queryable
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *database.DB) *MetricsRepository {
	return &MetricsRepository{q: db.Pool}
}

// GetParticipantMetrics aggregates a user's history into a snapshot.
// Returns service.ErrNoHistory when the user has no stored record at all,
// which callers must treat differently from an all-zero snapshot.
func (r *MetricsRepository) GetParticipantMetrics(ctx context.Context, userID int64) (*models.ParticipantMetrics, error) {
	metrics := models.ParticipantMetrics{UserID: userID}

	userQuery := `
		SELECT username, points, discord_id, last_seen, created_at
		FROM users
		WHERE id = $1
	`
	err := r.q.QueryRow(ctx, userQuery, userID).Scan(
		&metrics.Username,
		&metrics.CarriedPoints,
		&metrics.LinkedDiscordID,
		&metrics.LastSeen,
		&metrics.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, service.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	activityQuery := `
		SELECT
			(SELECT COUNT(*) FROM plays WHERE dj_id = $1 AND NOT skipped),
			(SELECT COALESCE(SUM(woots), 0) FROM plays WHERE dj_id = $1 AND NOT skipped),
			(SELECT COALESCE(SUM(grabs), 0) FROM plays WHERE dj_id = $1 AND NOT skipped),
			(SELECT COALESCE(SUM(mehs), 0) FROM plays WHERE dj_id = $1),
			(SELECT COUNT(*) FROM messages WHERE user_id = $1 AND NOT is_command),
			(SELECT COUNT(*) FROM props WHERE user_id = $1)
	`
	err = r.q.QueryRow(ctx, activityQuery, userID).Scan(
		&metrics.PlayCount,
		&metrics.TotalWoots,
		&metrics.TotalGrabs,
		&metrics.TotalMehs,
		&metrics.MessageCount,
		&metrics.PropsGiven,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity for user %d: %w", userID, err)
	}

	moderationQuery := `
		SELECT kind, COUNT(*)
		FROM bans
		WHERE user_id = $1
		GROUP BY kind
	`
	rows, err := r.q.Query(ctx, moderationQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count moderation actions for user %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan moderation count: %w", err)
		}
		switch kind {
		case "BAN":
			metrics.BanCount = count
		case "MUTE":
			metrics.MuteCount = count
		case "WLBAN":
			metrics.WaitlistBanCount = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate moderation counts: %w", err)
	}

	return &metrics, nil
}

// GetGlobalTotals returns the room-wide play aggregates shared by every evaluation
func (r *MetricsRepository) GetGlobalTotals(ctx context.Context) (*models.GlobalTotals, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT skipped),
			COUNT(*) FILTER (WHERE skipped AND mehs > 4)
		FROM plays
	`

	var totals models.GlobalTotals
	err := r.q.QueryRow(ctx, query).Scan(&totals.TotalSongsPlayed, &totals.TotalHeavilySkipped)
	if err != nil {
		return nil, fmt.Errorf("failed to get global totals: %w", err)
	}

	return &totals, nil
}
