package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SeedUser inserts a user row with the given identity and join time
func (td *TestDatabase) SeedUser(t *testing.T, userID int64, username string, createdAt time.Time) {
	_, err := td.DB.Pool.Exec(context.Background(), `
		INSERT INTO users (id, username, created_at, last_seen)
		VALUES ($1, $2, $3, $3)
	`, userID, username, createdAt)
	require.NoError(t, err)
}

// SeedPlay inserts one play with the given audience reaction counts
func (td *TestDatabase) SeedPlay(t *testing.T, djID int64, skipped bool, woots, grabs, mehs int) {
	_, err := td.DB.Pool.Exec(context.Background(), `
		INSERT INTO plays (dj_id, skipped, woots, grabs, mehs)
		VALUES ($1, $2, $3, $4, $5)
	`, djID, skipped, woots, grabs, mehs)
	require.NoError(t, err)
}

// SeedMessages inserts count chat messages for a user
func (td *TestDatabase) SeedMessages(t *testing.T, userID int64, count int, isCommand bool) {
	for i := 0; i < count; i++ {
		_, err := td.DB.Pool.Exec(context.Background(), `
			INSERT INTO messages (user_id, is_command) VALUES ($1, $2)
		`, userID, isCommand)
		require.NoError(t, err)
	}
}

// SeedProps inserts count given-props records for a user
func (td *TestDatabase) SeedProps(t *testing.T, userID int64, count int) {
	for i := 0; i < count; i++ {
		_, err := td.DB.Pool.Exec(context.Background(), `
			INSERT INTO props (user_id) VALUES ($1)
		`, userID)
		require.NoError(t, err)
	}
}

// SeedBan inserts one moderation record of the given kind (BAN, MUTE, WLBAN)
func (td *TestDatabase) SeedBan(t *testing.T, userID int64, kind string) {
	_, err := td.DB.Pool.Exec(context.Background(), `
		INSERT INTO bans (user_id, kind) VALUES ($1, $2)
	`, userID, kind)
	require.NoError(t, err)
}

// SeedCooldown inserts a lock row with an explicit expiry offset from now
func (td *TestDatabase) SeedCooldown(t *testing.T, key string, expiresIn time.Duration) {
	_, err := td.DB.Pool.Exec(context.Background(), `
		INSERT INTO cooldowns (key, expires_at)
		VALUES ($1, NOW() + make_interval(secs => $2))
		ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`, key, expiresIn.Seconds())
	require.NoError(t, err)
}

// SeedDisconnect inserts a pending disconnect-timeout record for a user
func (td *TestDatabase) SeedDisconnect(t *testing.T, userID int64, waitlistPosition int) {
	_, err := td.DB.Pool.Exec(context.Background(), `
		INSERT INTO disconnects (user_id, waitlist_position, expires_at)
		VALUES ($1, $2, NOW() + interval '15 minutes')
	`, userID, waitlistPosition)
	require.NoError(t, err)
}

// CountRows returns the number of rows in a table matching the condition
func (td *TestDatabase) CountRows(t *testing.T, table, condition string, args ...any) int {
	var count int
	query := "SELECT COUNT(*) FROM " + table
	if condition != "" {
		query += " WHERE " + condition
	}
	err := td.DB.Pool.QueryRow(context.Background(), query, args...).Scan(&count)
	require.NoError(t, err)
	return count
}
