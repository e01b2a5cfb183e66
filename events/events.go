package events

import (
	"context"
	"sync"

	"plugbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRoleChanged         EventType = "role_changed"
	EventTypeSessionStarted      EventType = "session_started"
	EventTypeRouletteWinner      EventType = "roulette_winner"
	EventTypeRussianRouletteShot EventType = "russian_roulette_shot"
	EventTypeHolidayBonus        EventType = "holiday_bonus"
	EventTypeGiveawayWinner      EventType = "giveaway_winner"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RoleChangedEvent is emitted after a reputation evaluation changed a role.
type RoleChangedEvent struct {
	UserID   int64
	Username string
	Decision models.RoleDecision
	OldRole  models.Role
	NewRole  models.Role
	Score    float64
}

func (e RoleChangedEvent) Type() EventType {
	return EventTypeRoleChanged
}

// SessionStartedEvent is emitted when a game session opens for entries.
type SessionStartedEvent struct {
	Kind     models.GameKind
	Duration int
	Price    int64
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// RouletteWinnerEvent is emitted when a roulette draw resolves.
type RouletteWinnerEvent struct {
	UserID   int64
	Username string
	Position int
	Entrants int
}

func (e RouletteWinnerEvent) Type() EventType {
	return EventTypeRouletteWinner
}

// RussianRouletteShotEvent is emitted per victim during an elimination round.
type RussianRouletteShotEvent struct {
	UserID   int64
	Username string
	Lucky    bool
	Position int // target queue position, -1 when the outcome was a mute
}

func (e RussianRouletteShotEvent) Type() EventType {
	return EventTypeRussianRouletteShot
}

// HolidayBonusEvent is emitted when weekend currency is granted.
type HolidayBonusEvent struct {
	UserID   int64
	Username string
	Amount   int64
}

func (e HolidayBonusEvent) Type() EventType {
	return EventTypeHolidayBonus
}

// GiveawayWinnerEvent is emitted per winner of a ticket giveaway.
type GiveawayWinnerEvent struct {
	UserID   int64
	Username string
	Ordinal  int
}

func (e GiveawayWinnerEvent) Type() EventType {
	return EventTypeGiveawayWinner
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking game resolution
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
