package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
type EventRequest struct {
	Name        string `json:"name" validate:"notblank,max=100" example:"Go Meetup"`
	Description string `json:"description" validate:"notblank,max=500" example:"Monthly community meetup"`
	Date        string `json:"date" validate:"required" example:"2025-06-01"`
	Location    string `json:"location" validate:"notblank,max=200" example:"Main hall"`
	Time        string `json:"time" validate:"required" example:"18:30"`
}

func (req EventRequest) toDomain() *domain.Event {
	return domain.NewEvent(req.Name, req.Description, req.Date, req.Location, req.Time)
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegistrationResponse is returned by POST /events/{eventID}/register.
type RegistrationResponse struct {
	EventID int64  `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// RegistrationSuccessResponse is the success envelope for POST /events/{eventID}/register.
type RegistrationSuccessResponse struct {
	Data  RegistrationResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) internalError(w http.ResponseWriter, r *http.Request, err error) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
}

func eventNotFound(w http.ResponseWriter, id int64) {
	helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, fmt.Sprintf("event %d not found", id))
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event with its registered users, ordered by ID.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	event, found, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if !found {
		eventNotFound(w, id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event without registrations. The ID is assigned by the server.
// @Tags events
// @Accept json
// @Produce json
// @Param event body controllers.EventRequest true "Event details"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, error.details lists invalid fields"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req.toDomain())
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	w.Header().Set("Location", "/events/"+strconv.FormatInt(event.ID, 10))
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces name, description, date, location and time. Registrations are kept.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param event body controllers.EventRequest true "Event details"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, found, err := c.Service.UpdateEvent(r.Context(), id, req.toDomain())
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if !found {
		eventNotFound(w, id)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its registrations. Users are kept.
// @Tags events
// @Param eventID path int true "Event ID"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	deleted, err := c.Service.DeleteEvent(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if !deleted {
		eventNotFound(w, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegisterEvent godoc
// @Summary Register a user for an event
// @Description Adds an existing user to the event's registrations and sends a confirmation email. Registering twice is a no-op.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param registration body domain.RegistrationRequest true "Registration"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or user)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *EventController) RegisterEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req domain.RegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RegisterEvent(r.Context(), id, req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
			return
		}
		c.internalError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationResponse{
		EventID: id,
		UserID:  req.UserID,
		Message: "User registered for event successfully",
	})
}

// GenerateEventPDF godoc
// @Summary Download an event summary as PDF
// @Tags events
// @Produce application/pdf
// @Param eventID path int true "Event ID"
// @Success 200 {file} binary
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/pdf [get]
func (c *EventController) GenerateEventPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	pdf, found, err := c.Service.GenerateEventPDF(r.Context(), id)
	if err != nil {
		c.internalError(w, r, err)
		return
	}
	if !found {
		eventNotFound(w, id)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event_%d.pdf", id))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
