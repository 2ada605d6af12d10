package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	// Create main event bus
	mainBus := NewBus()

	// Create transactional bus that wraps the main bus
	transactionalBus := NewTransactionalBus(mainBus)

	// Set up a channel to capture received events
	eventReceived := make(chan GiveawayEndedEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	// Subscribe to giveaway ended events on the main bus
	mainBus.Subscribe(EventTypeGiveawayEnded, func(ctx context.Context, event Event) {
		defer wg.Done()
		if endedEvent, ok := event.(GiveawayEndedEvent); ok {
			select {
			case eventReceived <- endedEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected GiveawayEndedEvent, got %T", event)
		}
	})

	// Create a test event
	testEvent := GiveawayEndedEvent{
		GiveawayID: 42,
		GuildID:    789,
		ChannelID:  555,
		Prize:      "Nitro",
		Winners:    []int64{111, 222},
	}

	// Publish event to transactional bus (simulating service layer)
	transactionalBus.Publish(testEvent)

	// Flush events (simulating successful transaction commit)
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	// Wait for event to be processed
	wg.Wait()

	// Verify the event was received
	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.GiveawayID, receivedEvent.GiveawayID)
		assert.Equal(t, testEvent.GuildID, receivedEvent.GuildID)
		assert.Equal(t, testEvent.ChannelID, receivedEvent.ChannelID)
		assert.Equal(t, testEvent.Prize, receivedEvent.Prize)
		assert.Equal(t, testEvent.Winners, receivedEvent.Winners)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan KeyRedeemedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeKeyRedeemed, func(ctx context.Context, event Event) {
		defer wg.Done()
		if redeemedEvent, ok := event.(KeyRedeemedEvent); ok {
			eventsReceived <- redeemedEvent
		}
	})

	// Create and publish multiple test events
	events := []KeyRedeemedEvent{
		{GuildID: 100, UserID: 1, Code: "AAAA-BBBB-CCCC", PrizeName: "Gold"},
		{GuildID: 100, UserID: 2, Code: "DDDD-EEEE-FFFF", PrizeName: "Silver"},
		{GuildID: 100, UserID: 3, Code: "GGGG-HHHH-JJJJ", PrizeName: "Bronze"},
	}

	for _, event := range events {
		transactionalBus.Publish(event)
	}

	// Flush all events
	ctx := context.Background()
	err := transactionalBus.Flush(ctx)
	assert.NoError(t, err)

	// Wait for all events to be processed
	wg.Wait()

	// Verify all events were received
	receivedEvents := make([]KeyRedeemedEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Check that all original events were received (order may vary due to goroutines)
	userIDs := make(map[int64]bool)
	for _, received := range receivedEvents {
		userIDs[received.UserID] = true
	}

	assert.True(t, userIDs[1])
	assert.True(t, userIDs[2])
	assert.True(t, userIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeTicketClosed, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	// Publish event
	testEvent := TicketClosedEvent{
		TicketID:  7,
		GuildID:   789,
		ChannelID: 555,
		OpenerID:  123,
		ClosedBy:  456,
		Reason:    "resolved",
	}
	transactionalBus.Publish(testEvent)

	// Discard instead of flush (simulating transaction rollback)
	transactionalBus.Discard()

	// Verify no event was received
	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected - no event should be received
	}
}
