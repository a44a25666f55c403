package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

// Actor identifies the caller inside service operations.
type Actor struct {
	ID   int64
	Role domain.Role
}

// ListingCache abstracts the Redis-backed cache so tests can substitute
// an in-memory fake.
type ListingCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, pattern string)
}

// EventService coordinates event lifecycle and registrations.
type EventService struct {
	events     repository.EventRepository
	regs       repository.RegistrationRepository
	dispatcher events.Dispatcher
	cache      ListingCache
}

// EventDependencies bundles repositories for event service.
type EventDependencies struct {
	EventRepo        repository.EventRepository
	RegistrationRepo repository.RegistrationRepository
	Dispatcher       events.Dispatcher
	Cache            ListingCache
}

// NewEventService builds the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.EventRepo,
		regs:       deps.RegistrationRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
	}
}

// EventInput describes event creation/update payload.
type EventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    int
}

func (in EventInput) validate() error {
	if in.Title == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return apperrors.NewValidationError("starts_at and ends_at required", nil)
	}
	if !in.EndsAt.After(in.StartsAt) {
		return apperrors.NewValidationError("ends_at must be after starts_at", nil)
	}
	if in.Capacity < 0 {
		return apperrors.NewValidationError("capacity must not be negative", nil)
	}
	return nil
}

// CreateEvent creates a DRAFT event owned by the acting manager.
func (s *EventService) CreateEvent(ctx context.Context, actor Actor, input EventInput) (*domain.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Capacity:    input.Capacity,
		Status:      domain.EventStatusDraft,
		CreatedBy:   actor.ID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent mutates an event owned by the actor (admins may touch any).
func (s *EventService) UpdateEvent(ctx context.Context, actor Actor, eventID int64, input EventInput) (*domain.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	event, err := s.getOwned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventStatusCancelled {
		return nil, apperrors.NewConflict("event is cancelled", nil)
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	event.Capacity = input.Capacity
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)
	return event, nil
}

// PublishEvent moves a DRAFT event to PUBLISHED and announces it.
func (s *EventService) PublishEvent(ctx context.Context, actor Actor, eventID int64) (*domain.Event, error) {
	event, err := s.getOwned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusDraft {
		return nil, apperrors.NewConflict(fmt.Sprintf("cannot publish event in status %s", event.Status), nil)
	}

	event.Status = domain.EventStatusPublished
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPublished,
		EventID:   event.ID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload: events.EventPublishedPayload{
			Title:    event.Title,
			StartsAt: event.StartsAt,
			Capacity: event.Capacity,
		},
	})
	return event, nil
}

// CancelEvent cancels a DRAFT or PUBLISHED event.
func (s *EventService) CancelEvent(ctx context.Context, actor Actor, eventID int64, reason string) (*domain.Event, error) {
	event, err := s.getOwned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == domain.EventStatusCancelled {
		return nil, apperrors.NewConflict("event already cancelled", nil)
	}

	event.Status = domain.EventStatusCancelled
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCancelled,
		EventID:   event.ID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload:   events.EventCancelledPayload{Title: event.Title, Reason: reason},
	})
	return event, nil
}

// GetEvent loads a single event.
func (s *EventService) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	return event, nil
}

// ListUpcoming returns published future events, served from the cache
// when a fresh entry exists.
func (s *EventService) ListUpcoming(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	key := fmt.Sprintf("events:upcoming:%d:%d", limit, offset)

	var cached []domain.Event
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	listed, err := s.events.ListUpcoming(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, listed)
	}
	return listed, nil
}

// Register signs the volunteer up for a published event with free capacity.
func (s *EventService) Register(ctx context.Context, actor Actor, eventID int64) (*domain.Registration, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusPublished {
		return nil, apperrors.NewConflict("event is not open for registration", nil)
	}
	if time.Now().After(event.StartsAt) {
		return nil, apperrors.NewConflict("event already started", nil)
	}

	exists, err := s.regs.Exists(ctx, eventID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("already registered", nil)
	}

	// Capacity is enforced inside Create under the event row lock, so
	// concurrent registrations for the last slot cannot over-fill.
	reg := &domain.Registration{EventID: eventID, UserID: actor.ID}
	if err := s.regs.Create(ctx, reg, event.Capacity); err != nil {
		if err == repository.ErrEventFull {
			return nil, apperrors.NewConflict("event is full", nil)
		}
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("already registered", nil)
		}
		return nil, err
	}

	registered, err := s.regs.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.VolunteerRegistered,
		EventID:   eventID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload: events.VolunteerRegisteredPayload{
			RegistrationID: reg.ID,
			Registered:     registered,
			Capacity:       event.Capacity,
		},
	})
	return reg, nil
}

// CancelRegistration removes the volunteer from the event roster.
func (s *EventService) CancelRegistration(ctx context.Context, actor Actor, eventID int64) error {
	deleted, err := s.regs.Delete(ctx, eventID, actor.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("registration", nil)
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.RegistrationCancelled,
		EventID:   eventID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
	})
	return nil
}

// ListManaged returns the actor's own events, drafts included.
func (s *EventService) ListManaged(ctx context.Context, actor Actor, limit, offset int) ([]domain.Event, error) {
	return s.events.ListByManager(ctx, actor.ID, limit, offset)
}

// ListUserRegistrations returns the actor's registrations.
func (s *EventService) ListUserRegistrations(ctx context.Context, actor Actor, limit, offset int) ([]domain.Registration, error) {
	return s.regs.ListByUser(ctx, actor.ID, limit, offset)
}

// ListRoster returns the registrations for an event the actor manages.
func (s *EventService) ListRoster(ctx context.Context, actor Actor, eventID int64, limit, offset int) ([]domain.Registration, error) {
	if _, err := s.getOwned(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.regs.ListByEvent(ctx, eventID, limit, offset)
}

func (s *EventService) getOwned(ctx context.Context, actor Actor, eventID int64) (*domain.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("not the event manager")
	}
	return event, nil
}

func (s *EventService) invalidateListings(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "events:upcoming:*")
	}
}

func (s *EventService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}
