package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

func testEvent(eventType EventType) Event {
	return Event{
		ID:        "evt-1",
		Type:      eventType,
		EventID:   7,
		Actor:     Actor{UserID: 1, Role: domain.RoleEventManager},
		Timestamp: time.Now(),
	}
}

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventPublished, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})
	d.Subscribe(EventPublished, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	err := d.Publish(context.Background(), testEvent(EventPublished))
	assert.NoError(t, err)
	assert.Len(t, received, 2)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventCancelled, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), testEvent(EventPublished))
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	boom := errors.New("boom")
	secondRan := false
	d.Subscribe(VolunteerRegistered, func(context.Context, Event) error { return boom })
	d.Subscribe(VolunteerRegistered, func(context.Context, Event) error {
		secondRan = true
		return nil
	})

	err := d.Publish(context.Background(), testEvent(VolunteerRegistered))
	assert.ErrorIs(t, err, boom)
	assert.True(t, secondRan)
}

func TestDispatcherNoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), testEvent(CommentAdded)))
}
