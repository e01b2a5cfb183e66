package service

import (
	"context"
	"math"
	"testing"
	"time"

	"plugbot/config"
	"plugbot/events"
	"plugbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func unitWeights() config.ScoreWeights {
	return config.ScoreWeights{
		Ban: 1, Mute: 1, WaitlistBan: 1, PropsGiven: 1, Messages: 1,
		Woots: 1, Grabs: 1, Mehs: 1, DaysOffline: 1,
	}
}

func activeMetrics(now time.Time) *models.ParticipantMetrics {
	return &models.ParticipantMetrics{
		UserID:       42,
		Username:     "dj",
		PlayCount:    200,
		MessageCount: 500,
		TotalWoots:   1000,
		TotalGrabs:   500,
		TotalMehs:    10,
		CreatedAt:    now.AddDate(0, -3, 0),
		LastSeen:     now,
	}
}

func TestEvaluate_PromotionScenario(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	metrics := activeMetrics(now)
	totals := &models.GlobalTotals{TotalSongsPlayed: 1000, TotalHeavilySkipped: 50}

	score := Evaluate(metrics, totals, unitWeights(), now)

	// 500 messages + ((1500/11) - 1) * (200/1050 * 100)
	expected := 500.0 + (1500.0/11.0-1.0)*(200.0/1050.0*100.0)
	assert.InDelta(t, expected, score, 1e-9)

	// Clears the promotion threshold with its play count
	assert.True(t, score >= 100 && metrics.PlayCount >= 150)
	profile := &models.RoomUser{ID: 42, Username: "dj", Role: models.RoleNone}
	assert.Equal(t, models.DecisionPromote, Decide(profile, score, metrics.PlayCount, 3))
}

func TestEvaluate_BanPenaltyScalesByHundred(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	totals := &models.GlobalTotals{TotalSongsPlayed: 100}

	clean := &models.ParticipantMetrics{PlayCount: 100, LastSeen: now}
	banned := &models.ParticipantMetrics{PlayCount: 100, BanCount: 1, LastSeen: now}

	difference := Evaluate(clean, totals, unitWeights(), now) - Evaluate(banned, totals, unitWeights(), now)

	// One ban at weight 1 costs 100 penalty points, scaled by the
	// activity ratio percentage (100/100 * 100)
	assert.InDelta(t, 100.0*100.0, difference, 1e-9)
}

func TestEvaluate_DegenerateTotalsYieldNaN(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	metrics := &models.ParticipantMetrics{LastSeen: now}
	totals := &models.GlobalTotals{}

	assert.True(t, math.IsNaN(Evaluate(metrics, totals, unitWeights(), now)))
}

func TestDecide_NeverPromotesFreshAccounts(t *testing.T) {
	profile := &models.RoomUser{ID: 1, Role: models.RoleNone}

	for _, score := range []float64{50, 100, 1000, 1e9} {
		for _, playCount := range []int64{150, 250, 10000} {
			assert.Equal(t, models.DecisionNone, Decide(profile, score, playCount, 0))
		}
	}
}

func TestDecide_DemotionThresholds(t *testing.T) {
	resident := &models.RoomUser{ID: 1, Role: models.RoleResidentDJ}

	// Too few plays demotes regardless of score
	assert.Equal(t, models.DecisionDemote, Decide(resident, 1e6, 149, 12))

	// Below 100 with tolerance at low play counts
	assert.Equal(t, models.DecisionDemote, Decide(resident, 79, 200, 12))
	assert.Equal(t, models.DecisionNone, Decide(resident, 80, 200, 12))

	// Below 50 with tolerance at high play counts
	assert.Equal(t, models.DecisionDemote, Decide(resident, 29, 300, 12))
	assert.Equal(t, models.DecisionNone, Decide(resident, 30, 300, 12))
}

func TestDecide_SupervisoryExempt(t *testing.T) {
	bouncer := &models.RoomUser{ID: 1, Role: models.RoleBouncer}
	moderator := &models.RoomUser{ID: 2, Role: models.RoleNone, GlobalRole: models.GlobalRoleModerator}

	assert.Equal(t, models.DecisionNone, Decide(bouncer, -1e6, 0, 12))
	assert.Equal(t, models.DecisionNone, Decide(moderator, 1e6, 1000, 12))
}

func TestMonthsSince(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, MonthsSince(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, MonthsSince(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 1, MonthsSince(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 12, MonthsSince(time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), now))
}

func newTestScoreService(metricsRepo *MockMetricsRepository, room *MockRoomGateway, mirror *MockGuildRoleMirror, publisher *MockEventPublisher, now time.Time) *scoreService {
	s := NewScoreService(metricsRepo, room, mirror, publisher, unitWeights()).(*scoreService)
	s.now = func() time.Time { return now }
	return s
}

func TestScoreService_EvaluateUser_PromotesOnlineUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	discordID := "9001"
	metrics := activeMetrics(now)
	metrics.LinkedDiscordID = &discordID

	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{TotalSongsPlayed: 1000, TotalHeavilySkipped: 50}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(42)).Return(metrics, nil)
	room.On("GetOnlineUser", int64(42)).Return(&models.RoomUser{ID: 42, Username: "dj", Role: models.RoleNone}, true)
	room.On("SetRole", ctx, int64(42), models.RoleResidentDJ).Return(nil)
	room.On("SendChat", ctx, mock.AnythingOfType("string")).Return(nil)
	mirror.On("GrantResidentRole", "9001").Return(nil)
	publisher.On("Emit", ctx, mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.RoleChangedEvent)
		return ok && changed.UserID == 42 && changed.NewRole == models.RoleResidentDJ
	})).Return()

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionPromote, result.Decision)

	metricsRepo.AssertExpectations(t)
	room.AssertExpectations(t)
	mirror.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestScoreService_EvaluateUser_StaffFallbackDemotes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	// Few plays: a resident with this record is demoted
	metrics := &models.ParticipantMetrics{
		UserID:    7,
		Username:  "ghost",
		PlayCount: 20,
		CreatedAt: now.AddDate(-1, 0, 0),
		LastSeen:  now.AddDate(0, 0, -2),
	}

	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{TotalSongsPlayed: 1000}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(7)).Return(metrics, nil)
	room.On("GetOnlineUser", int64(7)).Return(nil, false)
	room.On("ListStaff", ctx).Return([]*models.RoomUser{
		{ID: 3, Username: "host", Role: models.RoleHost},
		{ID: 7, Username: "ghost", Role: models.RoleResidentDJ},
	}, nil)
	room.On("SetRole", ctx, int64(7), models.RoleNone).Return(nil)
	room.On("SendChat", ctx, mock.AnythingOfType("string")).Return(nil)
	publisher.On("Emit", ctx, mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.RoleChangedEvent)
		return ok && changed.Decision == models.DecisionDemote
	})).Return()

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDemote, result.Decision)

	room.AssertExpectations(t)
	publisher.AssertExpectations(t)
	mirror.AssertNotCalled(t, "RevokeResidentRole", mock.Anything)
}

func TestScoreService_EvaluateUser_NoHistoryStripsRole(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{TotalSongsPlayed: 1000}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(99)).Return(nil, ErrNoHistory)
	room.On("SetRole", ctx, int64(99), models.RoleNone).Return(nil)

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionStrip, result.Decision)
	assert.True(t, math.IsNaN(result.Score))

	room.AssertExpectations(t)
}

func TestScoreService_EvaluateUser_NaNSkipsRedundantStrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	metrics := &models.ParticipantMetrics{UserID: 5, LastSeen: now, CreatedAt: now.AddDate(-1, 0, 0)}

	// Zero totals make the activity ratio 0/0
	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(5)).Return(metrics, nil)
	room.On("GetOnlineUser", int64(5)).Return(&models.RoomUser{ID: 5, Username: "u", Role: models.RoleNone}, true)

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionStrip, result.Decision)

	// Role already none: no write issued
	room.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreService_EvaluateUser_NaNStripsPrivilegedRole(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	metrics := &models.ParticipantMetrics{UserID: 5, LastSeen: now, CreatedAt: now.AddDate(-1, 0, 0)}

	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(5)).Return(metrics, nil)
	room.On("GetOnlineUser", int64(5)).Return(&models.RoomUser{ID: 5, Username: "u", Role: models.RoleResidentDJ}, true)
	room.On("SetRole", ctx, int64(5), models.RoleNone).Return(nil)

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionStrip, result.Decision)

	room.AssertExpectations(t)
}

func TestScoreService_EvaluateUser_UnresolvableUserIsNoop(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	metricsRepo := new(MockMetricsRepository)
	room := new(MockRoomGateway)
	mirror := new(MockGuildRoleMirror)
	publisher := new(MockEventPublisher)

	metrics := activeMetrics(now)

	metricsRepo.On("GetGlobalTotals", ctx).Return(&models.GlobalTotals{TotalSongsPlayed: 1000}, nil)
	metricsRepo.On("GetParticipantMetrics", ctx, int64(42)).Return(metrics, nil)
	room.On("GetOnlineUser", int64(42)).Return(nil, false)
	room.On("ListStaff", ctx).Return([]*models.RoomUser{}, nil)

	service := newTestScoreService(metricsRepo, room, mirror, publisher, now)

	result, err := service.EvaluateUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNone, result.Decision)

	room.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
}
