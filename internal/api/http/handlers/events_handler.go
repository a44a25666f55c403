package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/service"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

// EventsHandler manages event and registration endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// ListUpcoming GET /events.
func (h *EventsHandler) ListUpcoming(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	listed, err := h.service.ListUpcoming(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(listed))
	for i := range listed {
		items = append(items, eventResponse(&listed[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListManaged GET /events/managed.
func (h *EventsHandler) ListManaged(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	listed, err := h.service.ListManaged(c.Context(), actor, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(listed))
	for i := range listed {
		items = append(items, eventResponse(&listed[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.service.GetEvent(c.Context(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.CreateEvent(c.Context(), actor, eventInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// UpdateEvent PATCH /events/:id.
func (h *EventsHandler) UpdateEvent(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.UpdateEvent(c.Context(), actor, eventID, eventInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// PublishEvent POST /events/:id/publish.
func (h *EventsHandler) PublishEvent(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.service.PublishEvent(c.Context(), actor, eventID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// CancelEvent POST /events/:id/cancel.
func (h *EventsHandler) CancelEvent(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CancelEventRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.CancelEvent(c.Context(), actor, eventID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// Register POST /events/:id/registrations.
func (h *EventsHandler) Register(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	reg, err := h.service.Register(c.Context(), actor, eventID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(reg)})
}

// CancelRegistration DELETE /events/:id/registrations.
func (h *EventsHandler) CancelRegistration(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.CancelRegistration(c.Context(), actor, eventID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListRoster GET /events/:id/registrations.
func (h *EventsHandler) ListRoster(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	regs, err := h.service.ListRoster(c.Context(), actor, eventID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrationResponses(regs)})
}

// ListMyRegistrations GET /me/registrations.
func (h *EventsHandler) ListMyRegistrations(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	regs, err := h.service.ListUserRegistrations(c.Context(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrationResponses(regs)})
}

func eventInput(req dto.EventRequest) service.EventInput {
	return service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Capacity:    event.Capacity,
		Status:      event.Status,
		CreatedBy:   event.CreatedBy,
		CreatedAt:   event.CreatedAt,
	}
}

func registrationResponse(reg *domain.Registration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:        reg.ID,
		EventID:   reg.EventID,
		UserID:    reg.UserID,
		CreatedAt: reg.CreatedAt,
	}
}

func registrationResponses(regs []domain.Registration) []dto.RegistrationResponse {
	items := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		items = append(items, registrationResponse(&regs[i]))
	}
	return items
}

func requireActor(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{ID: principal.User.ID, Role: principal.Role}, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
