package models

import (
	"time"
)

// ParticipantMetrics is a read-only snapshot of a user's historical activity,
// aggregated from the plays/messages/props/bans tables. It is recomputed per
// evaluation and never mutated by the scoring core.
type ParticipantMetrics struct {
	UserID           int64
	Username         string
	PlayCount        int64 // songs played as DJ, not skipped
	MessageCount     int64 // chat messages, commands excluded
	PropsGiven       int64
	BanCount         int64
	MuteCount        int64
	WaitlistBanCount int64
	TotalWoots       int64 // sum over unskipped plays as DJ
	TotalGrabs       int64
	TotalMehs        int64 // sum over all plays as DJ, skipped included
	CarriedPoints    int64 // legacy point balance carried into the message score
	LinkedDiscordID  *string
	CreatedAt        time.Time
	LastSeen         time.Time
}

// GlobalTotals are room-wide aggregates shared by every evaluation.
type GlobalTotals struct {
	TotalSongsPlayed    int64 // plays not skipped
	TotalHeavilySkipped int64 // plays skipped with more than 4 mehs
}
