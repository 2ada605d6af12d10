package events

import (
	"context"
	"sync"

	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeKeyRedeemed   EventType = "key_redeemed"
	EventTypeTicketClosed  EventType = "ticket_closed"
	EventTypeGiveawayEnded EventType = "giveaway_ended"
	EventTypeBugRegistered EventType = "bug_registered"
	EventTypeLevelUp       EventType = "level_up"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// KeyRedeemedEvent fires after a code has been consumed and a prize awarded
type KeyRedeemedEvent struct {
	GuildID   int64
	UserID    int64
	Code      string
	PrizeName string
}

func (e KeyRedeemedEvent) Type() EventType {
	return EventTypeKeyRedeemed
}

// TicketClosedEvent fires after a ticket transitions to closed
type TicketClosedEvent struct {
	TicketID  int64
	GuildID   int64
	ChannelID int64
	OpenerID  int64
	ClosedBy  int64
	Reason    string
	Kind      models.TicketKind
}

func (e TicketClosedEvent) Type() EventType {
	return EventTypeTicketClosed
}

// GiveawayEndedEvent fires after a giveaway transitions to ended
type GiveawayEndedEvent struct {
	GiveawayID int64
	GuildID    int64
	ChannelID  int64
	Prize      string
	Winners    []int64
	Reroll     bool
}

func (e GiveawayEndedEvent) Type() EventType {
	return EventTypeGiveawayEnded
}

// BugRegisteredEvent fires after a throttled bug report is accepted
type BugRegisteredEvent struct {
	ReportID   int64
	GuildID    int64
	ReporterID int64
	Content    string
}

func (e BugRegisteredEvent) Type() EventType {
	return EventTypeBugRegistered
}

// LevelUpEvent fires when a user's accumulated XP crosses a level boundary
type LevelUpEvent struct {
	GuildID  int64
	UserID   int64
	NewLevel int
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
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
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Call handlers asynchronously to avoid blocking
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

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context, so emit on a fresh one
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
