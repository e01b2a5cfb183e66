package service

import (
	"context"
	"errors"
	"time"

	"plugbot/events"
	"plugbot/models"
)

// ErrNoHistory is returned by MetricsRepository when a user has no stored
// history at all. Callers must not confuse it with an all-zero snapshot.
var ErrNoHistory = errors.New("no stored history for user")

// ErrSessionActive is returned by Start when a session of the same kind is
// already running or its cooldown lock is still held.
var ErrSessionActive = errors.New("session already active")

// MetricsRepository defines read-only access to historical activity counts
type MetricsRepository interface {
	// GetParticipantMetrics aggregates a user's history into a snapshot.
	// Returns ErrNoHistory when the user has no stored record.
	GetParticipantMetrics(ctx context.Context, userID int64) (*models.ParticipantMetrics, error)

	// GetGlobalTotals returns the room-wide play aggregates
	GetGlobalTotals(ctx context.Context) (*models.GlobalTotals, error)
}

// CooldownRepository is the durable cross-restart lock store for game starts
type CooldownRepository interface {
	// AcquireStart takes the start lock for a game kind. Returns false when
	// the lock is still held by a previous start.
	AcquireStart(ctx context.Context, kind models.GameKind, ttl time.Duration) (bool, error)

	// IsLocked reports whether the start lock for a game kind is held
	IsLocked(ctx context.Context, kind models.GameKind) (bool, error)

	// ClearDisconnect removes a pending disconnect-timeout record for a user
	ClearDisconnect(ctx context.Context, userID int64) error
}

// HolidayRepository tracks event currency and giveaway tickets
type HolidayRepository interface {
	// AddCurrency credits event currency to a user, creating the account if needed
	AddCurrency(ctx context.Context, userID int64, amount int64) error

	// GetTicketHolders returns all accounts holding a giveaway ticket
	GetTicketHolders(ctx context.Context) ([]*models.HolidayAccount, error)

	// SetTicket grants or clears a user's giveaway ticket
	SetTicket(ctx context.Context, userID int64, username string, held bool) error

	// ConsumeTickets atomically clears the tickets of a drawn winner set
	ConsumeTickets(ctx context.Context, userIDs []int64) error
}

// RoomGateway is the capability interface onto the live room: read access to
// online users and the waitlist, write access for moderation and queue moves.
// The transport behind it is excluded glue.
type RoomGateway interface {
	// GetOnlineUser returns a user currently in the room, or false
	GetOnlineUser(userID int64) (*models.RoomUser, bool)

	// ListStaff returns the room's staff listing, the fallback source for
	// users who are offline
	ListStaff(ctx context.Context) ([]*models.RoomUser, error)

	// GetWaitlist returns the ordered waitlist of user ids
	GetWaitlist() []int64

	// GetWaitlistPosition returns a user's waitlist index, or
	// models.WaitlistPositionNone
	GetWaitlistPosition(userID int64) int

	// SetQueuePosition moves a user to an absolute waitlist position
	SetQueuePosition(ctx context.Context, userID int64, position int) error

	// SetRole changes a user's room role
	SetRole(ctx context.Context, userID int64, role models.Role) error

	// MuteUser mutes a user for the given duration
	MuteUser(ctx context.Context, userID int64, reason models.MuteReason, duration models.MuteDuration) error

	// SendChat posts a message to the room chat
	SendChat(ctx context.Context, message string) error
}

// GuildRoleMirror mirrors the resident role onto a linked guild identity.
// All calls are best-effort: failures are logged by callers, never retried.
type GuildRoleMirror interface {
	GrantResidentRole(discordID string) error
	RevokeResidentRole(discordID string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// ScoreService evaluates a user's reputation and applies the role decision
type ScoreService interface {
	// EvaluateUser runs one snapshot -> decide -> write evaluation for a user
	EvaluateUser(ctx context.Context, userID int64) (*ScoreResult, error)
}

// GameService is the shared surface of both timed lottery games
type GameService interface {
	// Start opens a session for entries and schedules its resolution.
	// Returns ErrSessionActive when one is already running or cooling down.
	Start(ctx context.Context, duration time.Duration, price int64) error

	// Add admits a participant. Returns false for duplicates or when no
	// session is running.
	Add(userID int64) bool

	// Running reports whether a session is currently accepting entries
	Running() bool

	// End tears the session down. Safe to call repeatedly, from any state.
	End()
}

// GiveawayService draws winners from the holiday ticket holders
type GiveawayService interface {
	// Draw announces up to winners distinct ticket holders
	Draw(ctx context.Context, winners int) error

	// SetTicket grants or clears a user's giveaway ticket
	SetTicket(ctx context.Context, userID int64, held bool) error
}
