package models

import "time"

// GameKind identifies one of the timed lottery games. It doubles as the
// cooldown lock key, so the values are stable.
type GameKind string

const (
	GameRoulette        GameKind = "roulette"
	GameRussianRoulette GameKind = "russian_roulette"
)

// Cooldown returns the lock lifetime for a game kind. The lock survives
// process restarts, so a crashed session still blocks the next start until
// the window elapses.
func (k GameKind) Cooldown() time.Duration {
	switch k {
	case GameRussianRoulette:
		return 3 * time.Hour
	default:
		return time.Hour
	}
}

// RoleDecision is the outcome of a reputation evaluation.
type RoleDecision int

const (
	DecisionNone RoleDecision = iota
	DecisionPromote
	DecisionDemote
	DecisionStrip // unconditional strip: missing history or degenerate score
)

func (d RoleDecision) String() string {
	switch d {
	case DecisionPromote:
		return "promote"
	case DecisionDemote:
		return "demote"
	case DecisionStrip:
		return "strip"
	default:
		return "none"
	}
}
