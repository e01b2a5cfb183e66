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

// Delay between winner announcements, for chat readability.
const giveawayAnnouncePause = 5 * time.Second

// giveawayService draws winners among the holiday ticket holders. Offline
// winners stay winners: their stored username is announced instead.
type giveawayService struct {
	room        RoomGateway
	holidayRepo HolidayRepository
	publisher   EventPublisher
	rng         *rand.Rand
	pause       func(time.Duration)
}

// NewGiveawayService creates the giveaway service
func NewGiveawayService(room RoomGateway, holidayRepo HolidayRepository, publisher EventPublisher) GiveawayService {
	return &giveawayService{
		room:        room,
		holidayRepo: holidayRepo,
		publisher:   publisher,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		pause:       time.Sleep,
	}
}

func (s *giveawayService) Draw(ctx context.Context, winners int) error {
	if winners <= 0 {
		return fmt.Errorf("winner count must be positive")
	}

	accounts, err := s.holidayRepo.GetTicketHolders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ticket holders: %w", err)
	}

	usernames := make(map[int64]string, len(accounts))
	for _, account := range accounts {
		usernames[account.UserID] = account.Username
	}
	pool := lo.Uniq(lo.Map(accounts, func(a *models.HolidayAccount, _ int) int64 {
		return a.UserID
	}))

	var drawn []int64
	for ordinal := 1; ordinal <= winners && len(pool) > 0; ordinal++ {
		winner := pool[s.rng.Intn(len(pool))]
		pool = lo.Filter(pool, func(id int64, _ int) bool { return id != winner })
		drawn = append(drawn, winner)

		name := usernames[winner]
		if user, ok := s.room.GetOnlineUser(winner); ok {
			name = user.Username
		}

		if err := s.room.SendChat(ctx, fmt.Sprintf("Winner %d - %s", ordinal, name)); err != nil {
			log.Errorf("Failed to announce giveaway winner: %v", err)
		}

		s.publisher.Emit(ctx, events.GiveawayWinnerEvent{
			UserID:   winner,
			Username: name,
			Ordinal:  ordinal,
		})

		s.pause(giveawayAnnouncePause)
	}

	// Winners' tickets are consumed so they sit out the next draw
	if len(drawn) > 0 {
		if err := s.holidayRepo.ConsumeTickets(ctx, drawn); err != nil {
			return fmt.Errorf("failed to consume winner tickets: %w", err)
		}
	}

	return nil
}

// SetTicket grants or clears a user's giveaway ticket. The stored username is
// refreshed when the user is online; offline grants keep the stored one.
func (s *giveawayService) SetTicket(ctx context.Context, userID int64, held bool) error {
	var username string
	if user, ok := s.room.GetOnlineUser(userID); ok {
		username = user.Username
	}
	return s.holidayRepo.SetTicket(ctx, userID, username, held)
}
