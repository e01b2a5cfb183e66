package service

import (
	"context"
	"testing"
	"time"

	"plugbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdleSession(cooldowns *MockCooldownRepository) *session {
	s := newSession(models.GameRoulette, cooldowns)
	s.resolve = func() {}
	return s
}

func TestSession_StartAcquiresCooldownLock(t *testing.T) {
	ctx := context.Background()
	cooldowns := new(MockCooldownRepository)
	cooldowns.On("IsLocked", ctx, models.GameRoulette).Return(false, nil)
	cooldowns.On("AcquireStart", ctx, models.GameRoulette, time.Hour).Return(true, nil)

	s := newIdleSession(cooldowns)
	defer s.End()

	require.NoError(t, s.Start(ctx, time.Minute, 100))
	assert.True(t, s.Running())
	cooldowns.AssertExpectations(t)
}

func TestSession_StartRefusedWhileRunning(t *testing.T) {
	ctx := context.Background()
	cooldowns := new(MockCooldownRepository)
	cooldowns.On("IsLocked", ctx, models.GameRoulette).Return(false, nil).Once()
	cooldowns.On("AcquireStart", ctx, models.GameRoulette, time.Hour).Return(true, nil).Once()

	s := newIdleSession(cooldowns)
	defer s.End()

	require.NoError(t, s.Start(ctx, time.Minute, 100))
	assert.ErrorIs(t, s.Start(ctx, time.Minute, 100), ErrSessionActive)
}

func TestSession_StartRefusedWhileCoolingDown(t *testing.T) {
	ctx := context.Background()
	cooldowns := new(MockCooldownRepository)
	cooldowns.On("IsLocked", ctx, models.GameRoulette).Return(true, nil)

	s := newIdleSession(cooldowns)

	assert.ErrorIs(t, s.Start(ctx, time.Minute, 100), ErrSessionActive)
	assert.False(t, s.Running())
	cooldowns.AssertNotCalled(t, "AcquireStart", ctx, models.GameRoulette, time.Hour)
}

func TestSession_StartRefusedWhenLockLost(t *testing.T) {
	ctx := context.Background()
	cooldowns := new(MockCooldownRepository)
	cooldowns.On("IsLocked", ctx, models.GameRoulette).Return(false, nil)
	cooldowns.On("AcquireStart", ctx, models.GameRoulette, time.Hour).Return(false, nil)

	s := newIdleSession(cooldowns)

	assert.ErrorIs(t, s.Start(ctx, time.Minute, 100), ErrSessionActive)
	assert.False(t, s.Running())
}

func TestSession_AddOnlyWhileRunning(t *testing.T) {
	s := newIdleSession(new(MockCooldownRepository))

	assert.False(t, s.Add(1))

	s.running = true
	assert.True(t, s.Add(1))
	assert.False(t, s.Add(1))
	assert.True(t, s.Add(2))
	assert.Equal(t, []int64{1, 2}, s.players)
}

func TestSession_EndIsIdempotent(t *testing.T) {
	s := newIdleSession(new(MockCooldownRepository))
	s.running = true
	s.players = []int64{1, 2, 3}

	s.End()
	s.End()

	assert.False(t, s.Running())
	assert.Empty(t, s.players)
}

func TestSession_BeginResolutionSnapshotsPlayers(t *testing.T) {
	s := newIdleSession(new(MockCooldownRepository))
	s.running = true
	s.players = []int64{1, 2, 3}

	players := s.beginResolution()

	assert.Equal(t, []int64{1, 2, 3}, players)
	assert.False(t, s.Running())

	// Mutating the snapshot must not touch session state
	players[0] = 99
	assert.Equal(t, []int64{1, 2, 3}, s.players)
}
