package service

import (
	"context"
	"sync"
	"time"

	"plugbot/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// session is the state machine shared by both games: Idle -> Running ->
// Resolving -> Idle. The in-memory running flag is the fast path; the durable
// cooldown lock is the source of truth across restarts, so Start always
// consults it first.
type session struct {
	kind      models.GameKind
	cooldowns CooldownRepository

	mu       sync.Mutex
	running  bool
	duration time.Duration
	price    int64
	players  []int64
	timer    *time.Timer

	// resolve is invoked exactly once per start, by the session timer.
	resolve func()
}

func newSession(kind models.GameKind, cooldowns CooldownRepository) *session {
	return &session{kind: kind, cooldowns: cooldowns}
}

// Start opens the session for entries and schedules its resolution.
func (s *session) Start(ctx context.Context, duration time.Duration, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSessionActive
	}

	locked, err := s.cooldowns.IsLocked(ctx, s.kind)
	if err != nil {
		return err
	}
	if locked {
		return ErrSessionActive
	}

	acquired, err := s.cooldowns.AcquireStart(ctx, s.kind, s.kind.Cooldown())
	if err != nil {
		return err
	}
	if !acquired {
		return ErrSessionActive
	}

	s.running = true
	s.duration = duration
	s.price = price
	s.players = nil
	s.timer = time.AfterFunc(duration, s.resolve)

	log.WithFields(log.Fields{
		"game":     s.kind,
		"duration": duration,
		"price":    price,
	}).Info("Game session started")

	return nil
}

// Add admits a participant while the session is running. Duplicate ids are
// ignored; the return value signals whether the id was newly added.
func (s *session) Add(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	if lo.Contains(s.players, userID) {
		return false
	}
	s.players = append(s.players, userID)
	return true
}

// Running reports whether the session is accepting entries.
func (s *session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// End resets all session state and cancels any pending timer. Idempotent and
// safe from any state.
func (s *session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *session) reset() {
	s.running = false
	s.duration = 0
	s.price = 0
	s.players = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// beginResolution flips the session out of the entry phase and returns the
// participant list for the resolver. The timer fired already, so there is
// nothing left to cancel.
func (s *session) beginResolution() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	players := make([]int64, len(s.players))
	copy(players, s.players)
	return players
}
