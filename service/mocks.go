package service

import (
	"context"
	"time"

	"plugbot/events"
	"plugbot/models"

	"github.com/stretchr/testify/mock"
)

// MockMetricsRepository is a mock implementation of MetricsRepository
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) GetParticipantMetrics(ctx context.Context, userID int64) (*models.ParticipantMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipantMetrics), args.Error(1)
}

func (m *MockMetricsRepository) GetGlobalTotals(ctx context.Context) (*models.GlobalTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalTotals), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) AcquireStart(ctx context.Context, kind models.GameKind, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, kind, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCooldownRepository) IsLocked(ctx context.Context, kind models.GameKind) (bool, error) {
	args := m.Called(ctx, kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockCooldownRepository) ClearDisconnect(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockHolidayRepository is a mock implementation of HolidayRepository
type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) AddCurrency(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockHolidayRepository) GetTicketHolders(ctx context.Context) ([]*models.HolidayAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HolidayAccount), args.Error(1)
}

func (m *MockHolidayRepository) SetTicket(ctx context.Context, userID int64, username string, held bool) error {
	args := m.Called(ctx, userID, username, held)
	return args.Error(0)
}

func (m *MockHolidayRepository) ConsumeTickets(ctx context.Context, userIDs []int64) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

// MockRoomGateway is a mock implementation of RoomGateway
type MockRoomGateway struct {
	mock.Mock
}

func (m *MockRoomGateway) GetOnlineUser(userID int64) (*models.RoomUser, bool) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.RoomUser), args.Bool(1)
}

func (m *MockRoomGateway) ListStaff(ctx context.Context) ([]*models.RoomUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoomUser), args.Error(1)
}

func (m *MockRoomGateway) GetWaitlist() []int64 {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]int64)
}

func (m *MockRoomGateway) GetWaitlistPosition(userID int64) int {
	args := m.Called(userID)
	return args.Int(0)
}

func (m *MockRoomGateway) SetQueuePosition(ctx context.Context, userID int64, position int) error {
	args := m.Called(ctx, userID, position)
	return args.Error(0)
}

func (m *MockRoomGateway) SetRole(ctx context.Context, userID int64, role models.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRoomGateway) MuteUser(ctx context.Context, userID int64, reason models.MuteReason, duration models.MuteDuration) error {
	args := m.Called(ctx, userID, reason, duration)
	return args.Error(0)
}

func (m *MockRoomGateway) SendChat(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// MockGuildRoleMirror is a mock implementation of GuildRoleMirror
type MockGuildRoleMirror struct {
	mock.Mock
}

func (m *MockGuildRoleMirror) GrantResidentRole(discordID string) error {
	args := m.Called(discordID)
	return args.Error(0)
}

func (m *MockGuildRoleMirror) RevokeResidentRole(discordID string) error {
	args := m.Called(discordID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
