package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"plugbot/events"
	"plugbot/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// rouletteService runs the weighted queue-position lottery. Entrants buy in
// during the entry window; resolution draws one ticket from a pool where each
// entrant holds Multiplier(...) duplicates, and moves the winner toward the
// front of the waitlist.
type rouletteService struct {
	*session
	room        RoomGateway
	holidayRepo HolidayRepository
	publisher   EventPublisher
	rng         *rand.Rand
	now         func() time.Time
}

// NewRouletteService creates the roulette game service
func NewRouletteService(room RoomGateway, cooldowns CooldownRepository, holidayRepo HolidayRepository, publisher EventPublisher) GameService {
	s := &rouletteService{
		room:        room,
		holidayRepo: holidayRepo,
		publisher:   publisher,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
	s.session = newSession(models.GameRoulette, cooldowns)
	s.session.resolve = s.resolveSession
	return s
}

func (s *rouletteService) Start(ctx context.Context, duration time.Duration, price int64) error {
	if err := s.session.Start(ctx, duration, price); err != nil {
		return err
	}
	s.publisher.Emit(ctx, events.SessionStartedEvent{
		Kind:     models.GameRoulette,
		Duration: int(duration.Seconds()),
		Price:    price,
	})
	return nil
}

// resolveSession is invoked by the session timer, exactly once per start.
func (s *rouletteService) resolveSession() {
	ctx := context.Background()
	players := s.beginResolution()

	if len(players) == 0 {
		s.End()
		s.announce(ctx, "Nobody joined the roulette, no winner this time.")
		return
	}

	pool := s.buildPool(players)
	s.drawWinner(ctx, players, pool)
}

// buildPool expands the entrant list into weighted tickets. Entrants who left
// the room before resolution contribute nothing.
func (s *rouletteService) buildPool(players []int64) []int64 {
	var pool []int64
	for _, player := range players {
		if _, ok := s.room.GetOnlineUser(player); !ok {
			continue
		}
		inWaitlist := s.room.GetWaitlistPosition(player) != models.WaitlistPositionNone
		tickets := Multiplier(len(players), inWaitlist)
		for i := 0; i < tickets; i++ {
			pool = append(pool, player)
		}
	}
	return pool
}

// drawWinner draws one ticket uniformly. A winner who cannot be resolved to
// an online user forfeits all their tickets and the draw repeats; an empty
// pool ends the session without a winner.
func (s *rouletteService) drawWinner(ctx context.Context, players []int64, pool []int64) {
	for len(pool) > 0 {
		winner := pool[s.rng.Intn(len(pool))]

		user, ok := s.room.GetOnlineUser(winner)
		if !ok {
			pool = lo.Filter(pool, func(id int64, _ int) bool { return id != winner })
			continue
		}

		position := TargetPosition(s.rng, s.room.GetWaitlistPosition(winner), len(s.room.GetWaitlist()))

		if s.isWeekend() {
			s.grantWeekendBonus(ctx, user)
		}

		s.announce(ctx, fmt.Sprintf("@%s won the roulette and moves to waitlist position %d!", user.Username, position))
		s.End()

		if err := s.room.SetQueuePosition(ctx, user.ID, position); err != nil {
			log.WithFields(log.Fields{
				"userID":   user.ID,
				"position": position,
			}).Errorf("Failed to move roulette winner: %v", err)
		}

		s.publisher.Emit(ctx, events.RouletteWinnerEvent{
			UserID:   user.ID,
			Username: user.Username,
			Position: position,
			Entrants: len(players),
		})
		return
	}

	s.End()
	s.announce(ctx, "Something went wrong with the roulette, no winner could be drawn.")
}

func (s *rouletteService) isWeekend() bool {
	switch s.now().Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// grantWeekendBonus credits a uniform [10,50] currency bonus to the winner's
// holiday account. Best-effort: the draw outcome does not depend on it.
func (s *rouletteService) grantWeekendBonus(ctx context.Context, user *models.RoomUser) {
	amount := s.rng.Int63n(41) + 10

	if err := s.holidayRepo.AddCurrency(ctx, user.ID, amount); err != nil {
		log.WithField("userID", user.ID).Errorf("Failed to grant weekend bonus: %v", err)
		return
	}

	s.publisher.Emit(ctx, events.HolidayBonusEvent{
		UserID:   user.ID,
		Username: user.Username,
		Amount:   amount,
	})
}

func (s *rouletteService) announce(ctx context.Context, message string) {
	if err := s.room.SendChat(ctx, message); err != nil {
		log.Errorf("Failed to send roulette announcement: %v", err)
	}
}
