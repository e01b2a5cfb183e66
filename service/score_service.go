package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"plugbot/config"
	"plugbot/events"
	"plugbot/models"

	log "github.com/sirupsen/logrus"
)

// ScoreResult is the outcome of one reputation evaluation.
type ScoreResult struct {
	UserID   int64
	Score    float64
	Decision models.RoleDecision
}

// scoreService implements the ScoreService interface
type scoreService struct {
	metricsRepo MetricsRepository
	room        RoomGateway
	mirror      GuildRoleMirror
	publisher   EventPublisher
	weights     config.ScoreWeights
	now         func() time.Time
}

// NewScoreService creates a new score service. Weights are fixed at
// construction; the scoring itself is the pure Evaluate function.
func NewScoreService(metricsRepo MetricsRepository, room RoomGateway, mirror GuildRoleMirror, publisher EventPublisher, weights config.ScoreWeights) ScoreService {
	return &scoreService{
		metricsRepo: metricsRepo,
		room:        room,
		mirror:      mirror,
		publisher:   publisher,
		weights:     weights,
		now:         time.Now,
	}
}

// Evaluate computes the composite reputation score from a metrics snapshot.
// The grouping mirrors the production formula; NaN is a valid result when the
// global totals are degenerate and means "no eligible role".
func Evaluate(m *models.ParticipantMetrics, totals *models.GlobalTotals, w config.ScoreWeights, now time.Time) float64 {
	banPenalty := (float64(m.BanCount)*w.Ban + float64(m.MuteCount)*w.Mute + float64(m.WaitlistBanCount)*w.WaitlistBan) * 100

	propsGivenPoints := float64(m.PropsGiven) * w.PropsGiven
	messagesPoints := float64(m.MessageCount+m.CarriedPoints) * w.Messages
	wootsPoints := float64(m.TotalWoots) * w.Woots
	grabsPoints := float64(m.TotalGrabs) * w.Grabs
	mehsPoints := float64(m.TotalMehs) * w.Mehs

	daysOffline := math.Floor(now.Sub(m.LastSeen).Hours() / 24)
	offlineDaysPoints := daysOffline*w.DaysOffline*100 + 1

	activityRatio := float64(m.PlayCount) / float64(totals.TotalSongsPlayed+totals.TotalHeavilySkipped)

	return propsGivenPoints + messagesPoints +
		(((wootsPoints+grabsPoints)/(mehsPoints+1))-(offlineDaysPoints+banPenalty))*(activityRatio*100)
}

// Decide maps a score onto a role transition for the given user profile.
// Supervisory users are exempt. Demotion applies a tolerance of 20 points on
// top of the earned score before comparing against the thresholds.
func Decide(profile *models.RoomUser, score float64, playCount int64, joinedMonths int) models.RoleDecision {
	if profile.Supervisory() {
		return models.DecisionNone
	}

	if profile.Role == models.RoleResidentDJ {
		const tolerance = 20
		tolerated := score + tolerance

		if (tolerated < 100 && playCount < 250) || (tolerated < 50 && playCount > 250) || playCount < 150 {
			return models.DecisionDemote
		}
		return models.DecisionNone
	}

	if (score >= 100 && joinedMonths >= 1 && playCount >= 150) ||
		(score >= 50 && joinedMonths >= 1 && playCount >= 250) {
		return models.DecisionPromote
	}

	return models.DecisionNone
}

// MonthsSince returns the number of whole calendar months elapsed since t.
func MonthsSince(t, now time.Time) int {
	months := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
	if now.Day() < t.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func (s *scoreService) EvaluateUser(ctx context.Context, userID int64) (*ScoreResult, error) {
	totals, err := s.metricsRepo.GetGlobalTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get global totals: %w", err)
	}

	metrics, err := s.metricsRepo.GetParticipantMetrics(ctx, userID)
	if err == ErrNoHistory {
		// No history at all: the user holds no earned reputation, so the
		// only safe role is none.
		s.stripRole(ctx, userID, nil)
		return &ScoreResult{UserID: userID, Decision: models.DecisionStrip, Score: math.NaN()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant metrics: %w", err)
	}

	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	score := Evaluate(metrics, totals, s.weights, s.now())

	if math.IsNaN(score) {
		// Degenerate denominators. Terminal outcome: no eligible role.
		// The write is skipped when the role is already known to be none.
		if profile == nil || profile.Role != models.RoleNone {
			s.stripRole(ctx, userID, metrics)
		}
		return &ScoreResult{UserID: userID, Decision: models.DecisionStrip, Score: score}, nil
	}

	if profile == nil {
		// Neither online nor in the staff listing: nothing to transition.
		return &ScoreResult{UserID: userID, Decision: models.DecisionNone, Score: score}, nil
	}

	joined := MonthsSince(metrics.CreatedAt, s.now())
	decision := Decide(profile, score, metrics.PlayCount, joined)

	switch decision {
	case models.DecisionPromote:
		s.applyTransition(ctx, profile, metrics, models.RoleResidentDJ, decision, score)
	case models.DecisionDemote:
		s.applyTransition(ctx, profile, metrics, models.RoleNone, decision, score)
	}

	return &ScoreResult{UserID: userID, Decision: decision, Score: score}, nil
}

// resolveProfile finds the user's current role record, preferring the live
// room and falling back to the staff listing for offline users. The decision
// contract is identical for both sources.
func (s *scoreService) resolveProfile(ctx context.Context, userID int64) (*models.RoomUser, error) {
	if user, ok := s.room.GetOnlineUser(userID); ok {
		return user, nil
	}

	staff, err := s.room.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	for _, member := range staff {
		if member.ID == userID {
			return member, nil
		}
	}
	return nil, nil
}

func (s *scoreService) applyTransition(ctx context.Context, profile *models.RoomUser, metrics *models.ParticipantMetrics, newRole models.Role, decision models.RoleDecision, score float64) {
	if err := s.room.SetRole(ctx, profile.ID, newRole); err != nil {
		log.WithFields(log.Fields{
			"userID":   profile.ID,
			"decision": decision.String(),
		}).Errorf("Failed to set room role: %v", err)
		return
	}

	s.mirrorRole(metrics, newRole)

	s.publisher.Emit(ctx, events.RoleChangedEvent{
		UserID:   profile.ID,
		Username: profile.Username,
		Decision: decision,
		OldRole:  profile.Role,
		NewRole:  newRole,
		Score:    score,
	})

	var announcement string
	if decision == models.DecisionPromote {
		announcement = fmt.Sprintf("@%s you earned the Resident DJ role, congrats!", profile.Username)
	} else {
		announcement = fmt.Sprintf("@%s your Resident DJ role expired.", profile.Username)
	}
	if err := s.room.SendChat(ctx, announcement); err != nil {
		log.Errorf("Failed to announce role change: %v", err)
	}
}

// stripRole removes the privileged role without evaluating thresholds.
func (s *scoreService) stripRole(ctx context.Context, userID int64, metrics *models.ParticipantMetrics) {
	if err := s.room.SetRole(ctx, userID, models.RoleNone); err != nil {
		log.WithField("userID", userID).Errorf("Failed to strip role: %v", err)
		return
	}
	s.mirrorRole(metrics, models.RoleNone)
}

// mirrorRole propagates the resident role to a linked guild identity.
// Best-effort and independently fallible from the room write.
func (s *scoreService) mirrorRole(metrics *models.ParticipantMetrics, newRole models.Role) {
	if s.mirror == nil || metrics == nil || metrics.LinkedDiscordID == nil {
		return
	}

	var err error
	if newRole == models.RoleResidentDJ {
		err = s.mirror.GrantResidentRole(*metrics.LinkedDiscordID)
	} else {
		err = s.mirror.RevokeResidentRole(*metrics.LinkedDiscordID)
	}
	if err != nil {
		log.WithField("discordID", *metrics.LinkedDiscordID).Errorf("Failed to mirror guild role: %v", err)
	}
}
