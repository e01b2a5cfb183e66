package service

import (
	"math/rand"
	"testing"
	"time"

	"plugbot/events"
	"plugbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestRouletteService(room *MockRoomGateway, holidayRepo *MockHolidayRepository, publisher *MockEventPublisher, now time.Time) *rouletteService {
	s := NewRouletteService(room, new(MockCooldownRepository), holidayRepo, publisher).(*rouletteService)
	s.rng = rand.New(rand.NewSource(1))
	s.now = func() time.Time { return now }
	return s
}

// A Wednesday, so no weekend bonus unless the test opts in.
var weekday = time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

func TestRoulette_NoPlayersEndsWithoutWinner(t *testing.T) {
	room := new(MockRoomGateway)
	publisher := new(MockEventPublisher)
	room.On("SendChat", mock.Anything, "Nobody joined the roulette, no winner this time.").Return(nil)

	s := newTestRouletteService(room, new(MockHolidayRepository), publisher, weekday)
	s.resolveSession()

	assert.False(t, s.Running())
	room.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestRoulette_SingleEntrantAlwaysWins(t *testing.T) {
	room := new(MockRoomGateway)
	publisher := new(MockEventPublisher)

	room.On("GetOnlineUser", int64(7)).Return(&models.RoomUser{ID: 7, Username: "solo"}, true)
	room.On("GetWaitlistPosition", int64(7)).Return(20)
	room.On("GetWaitlist").Return(make([]int64, 30))
	room.On("SendChat", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	room.On("SetQueuePosition", mock.Anything, int64(7), mock.AnythingOfType("int")).Return(nil)
	publisher.On("Emit", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		winner, ok := e.(events.RouletteWinnerEvent)
		return ok && winner.UserID == 7 && winner.Position >= 5 && winner.Position < 20
	})).Return()

	s := newTestRouletteService(room, new(MockHolidayRepository), publisher, weekday)
	s.session.running = true
	s.session.players = []int64{7}
	s.resolveSession()

	assert.False(t, s.Running())
	room.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRoulette_OfflineEntrantContributesNoTickets(t *testing.T) {
	room := new(MockRoomGateway)
	publisher := new(MockEventPublisher)

	room.On("GetOnlineUser", int64(1)).Return(nil, false)
	room.On("GetOnlineUser", int64(2)).Return(&models.RoomUser{ID: 2, Username: "present"}, true)
	room.On("GetWaitlistPosition", int64(2)).Return(models.WaitlistPositionNone)
	room.On("GetWaitlist").Return(make([]int64, 10))
	room.On("SendChat", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	room.On("SetQueuePosition", mock.Anything, int64(2), mock.AnythingOfType("int")).Return(nil)
	publisher.On("Emit", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		winner, ok := e.(events.RouletteWinnerEvent)
		return ok && winner.UserID == 2
	})).Return()

	s := newTestRouletteService(room, new(MockHolidayRepository), publisher, weekday)
	s.session.running = true
	s.session.players = []int64{1, 2}
	s.resolveSession()

	publisher.AssertExpectations(t)
}

func TestRoulette_WinnerGoneByDrawForfeitsTickets(t *testing.T) {
	room := new(MockRoomGateway)
	publisher := new(MockEventPublisher)

	// Online while the pool is built, gone by the time the draw lands
	room.On("GetOnlineUser", int64(9)).Return(&models.RoomUser{ID: 9, Username: "flaky"}, true).Once()
	room.On("GetOnlineUser", int64(9)).Return(nil, false)
	room.On("GetWaitlistPosition", int64(9)).Return(8)
	room.On("SendChat", mock.Anything, "Something went wrong with the roulette, no winner could be drawn.").Return(nil)

	s := newTestRouletteService(room, new(MockHolidayRepository), publisher, weekday)
	s.session.running = true
	s.session.players = []int64{9}
	s.resolveSession()

	assert.False(t, s.Running())
	room.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestRoulette_WeekendBonusGranted(t *testing.T) {
	friday := time.Date(2024, 6, 14, 15, 0, 0, 0, time.UTC)

	room := new(MockRoomGateway)
	holidayRepo := new(MockHolidayRepository)
	publisher := new(MockEventPublisher)

	room.On("GetOnlineUser", int64(7)).Return(&models.RoomUser{ID: 7, Username: "solo"}, true)
	room.On("GetWaitlistPosition", int64(7)).Return(20)
	room.On("GetWaitlist").Return(make([]int64, 30))
	room.On("SendChat", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	room.On("SetQueuePosition", mock.Anything, int64(7), mock.AnythingOfType("int")).Return(nil)
	holidayRepo.On("AddCurrency", mock.Anything, int64(7), mock.MatchedBy(func(amount int64) bool {
		return amount >= 10 && amount <= 50
	})).Return(nil)
	publisher.On("Emit", mock.Anything, mock.AnythingOfType("events.HolidayBonusEvent")).Return()
	publisher.On("Emit", mock.Anything, mock.AnythingOfType("events.RouletteWinnerEvent")).Return()

	s := newTestRouletteService(room, holidayRepo, publisher, friday)
	s.session.running = true
	s.session.players = []int64{7}
	s.resolveSession()

	holidayRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRoulette_NoBonusOnWeekdays(t *testing.T) {
	room := new(MockRoomGateway)
	holidayRepo := new(MockHolidayRepository)
	publisher := new(MockEventPublisher)

	room.On("GetOnlineUser", int64(7)).Return(&models.RoomUser{ID: 7, Username: "solo"}, true)
	room.On("GetWaitlistPosition", int64(7)).Return(20)
	room.On("GetWaitlist").Return(make([]int64, 30))
	room.On("SendChat", mock.Anything, mock.AnythingOfType("string")).Return(nil)
	room.On("SetQueuePosition", mock.Anything, int64(7), mock.AnythingOfType("int")).Return(nil)
	publisher.On("Emit", mock.Anything, mock.AnythingOfType("events.RouletteWinnerEvent")).Return()

	s := newTestRouletteService(room, holidayRepo, publisher, weekday)
	s.session.running = true
	s.session.players = []int64{7}
	s.resolveSession()

	holidayRepo.AssertNotCalled(t, "AddCurrency", mock.Anything, mock.Anything, mock.Anything)
}
