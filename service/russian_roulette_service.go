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

// Pauses around the shot announcement, purely for dramatic pacing in chat.
// Not synchronization points: correctness never depends on them.
const (
	preShotPause  = 3 * time.Second
	postShotPause = 5 * time.Second
)

// russianRouletteService runs the elimination game. Resolution walks a
// shrinking player list: every round draws one victim uniformly, flips a fair
// coin, and either rewards them with a better queue position or punishes them
// with a pushback or a short mute.
type russianRouletteService struct {
	*session
	room      RoomGateway
	publisher EventPublisher
	rng       *rand.Rand
	pause     func(time.Duration)
}

// NewRussianRouletteService creates the russian roulette game service
func NewRussianRouletteService(room RoomGateway, cooldowns CooldownRepository, publisher EventPublisher) GameService {
	s := &russianRouletteService{
		room:      room,
		publisher: publisher,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		pause:     time.Sleep,
	}
	s.session = newSession(models.GameRussianRoulette, cooldowns)
	s.session.resolve = s.resolveSession
	return s
}

func (s *russianRouletteService) Start(ctx context.Context, duration time.Duration, price int64) error {
	if err := s.session.Start(ctx, duration, price); err != nil {
		return err
	}
	s.publisher.Emit(ctx, events.SessionStartedEvent{
		Kind:     models.GameRussianRoulette,
		Duration: int(duration.Seconds()),
		Price:    price,
	})
	return nil
}

// resolveSession eliminates players one by one until the list is empty. Each
// iteration removes the drawn victim, so the loop terminates in at most
// len(players) rounds; forfeits shrink the list without consuming a shot.
func (s *russianRouletteService) resolveSession() {
	ctx := context.Background()
	players := s.beginResolution()

	for len(players) > 0 {
		victim := players[s.rng.Intn(len(players))]
		players = lo.Filter(players, func(id int64, _ int) bool { return id != victim })

		user, ok := s.room.GetOnlineUser(victim)
		if !ok {
			// Left before their turn: forfeit, and their pending
			// disconnect grace record no longer applies.
			s.announce(ctx, fmt.Sprintf("Player %d chickened out of the russian roulette!", victim))
			if err := s.session.cooldowns.ClearDisconnect(ctx, victim); err != nil {
				log.WithField("userID", victim).Errorf("Failed to clear disconnect record: %v", err)
			}
			continue
		}

		s.pause(preShotPause)
		s.announce(ctx, fmt.Sprintf("@%s pulls the trigger...", user.Username))
		s.pause(postShotPause)

		if s.rng.Float64() >= 0.5 {
			s.luckyShot(ctx, user)
		} else {
			s.unluckyShot(ctx, user)
		}
	}

	s.announce(ctx, "The russian roulette round is over!")
	s.End()
}

// luckyShot moves the victim toward the front of the queue. Victims outside
// the waitlist are appended at its end instead of entering the weighted draw.
func (s *russianRouletteService) luckyShot(ctx context.Context, user *models.RoomUser) {
	s.announce(ctx, fmt.Sprintf("@%s got a lucky shot and moves up the waitlist!", user.Username))

	position := s.room.GetWaitlistPosition(user.ID)
	waitlist := s.room.GetWaitlist()

	var target int
	if position == models.WaitlistPositionNone {
		target = len(waitlist)
	} else {
		target = TargetPosition(s.rng, position, len(waitlist))
	}

	s.setQueuePosition(ctx, user, target)

	s.publisher.Emit(ctx, events.RussianRouletteShotEvent{
		UserID:   user.ID,
		Username: user.Username,
		Lucky:    true,
		Position: target,
	})
}

// unluckyShot punishes the victim: queued victims are pushed toward the back,
// unqueued ones are muted, with a temporary role strip unless they hold an
// elevated privilege.
func (s *russianRouletteService) unluckyShot(ctx context.Context, user *models.RoomUser) {
	s.announce(ctx, fmt.Sprintf("@%s got shot!", user.Username))

	position := s.room.GetWaitlistPosition(user.ID)
	waitlist := s.room.GetWaitlist()

	if position == models.WaitlistPositionNone {
		if user.Supervisory() {
			// Privileged members keep their role, but the mute still lands.
			if err := s.room.MuteUser(ctx, user.ID, models.MuteReasonViolatingRules, models.MuteShort); err != nil {
				log.WithField("userID", user.ID).Errorf("Failed to mute victim: %v", err)
			}
		} else {
			s.muteWithRoleStrip(ctx, user)
		}

		s.publisher.Emit(ctx, events.RussianRouletteShotEvent{
			UserID:   user.ID,
			Username: user.Username,
			Lucky:    false,
			Position: -1,
		})
		return
	}

	target := PushbackPosition(s.rng, position, len(waitlist))
	s.setQueuePosition(ctx, user, target)

	s.publisher.Emit(ctx, events.RussianRouletteShotEvent{
		UserID:   user.ID,
		Username: user.Username,
		Lucky:    false,
		Position: target,
	})
}

// muteWithRoleStrip is the scoped strip -> mute -> restore sequence. The
// restore is deferred so the original role comes back exactly once, whether
// or not the mute itself succeeds.
func (s *russianRouletteService) muteWithRoleStrip(ctx context.Context, user *models.RoomUser) {
	original := user.Role

	if original != models.RoleNone {
		if err := s.room.SetRole(ctx, user.ID, models.RoleNone); err != nil {
			log.WithField("userID", user.ID).Errorf("Failed to strip role before mute: %v", err)
		}
		defer func() {
			if err := s.room.SetRole(ctx, user.ID, original); err != nil {
				log.WithField("userID", user.ID).Errorf("Failed to restore role after mute: %v", err)
			}
		}()
	}

	if err := s.room.MuteUser(ctx, user.ID, models.MuteReasonViolatingRules, models.MuteShort); err != nil {
		log.WithField("userID", user.ID).Errorf("Failed to mute victim: %v", err)
	}
}

func (s *russianRouletteService) setQueuePosition(ctx context.Context, user *models.RoomUser, position int) {
	if err := s.room.SetQueuePosition(ctx, user.ID, position); err != nil {
		log.WithFields(log.Fields{
			"userID":   user.ID,
			"position": position,
		}).Errorf("Failed to move victim in waitlist: %v", err)
	}
}

func (s *russianRouletteService) announce(ctx context.Context, message string) {
	if err := s.room.SendChat(ctx, message); err != nil {
		log.Errorf("Failed to send russian roulette announcement: %v", err)
	}
}
