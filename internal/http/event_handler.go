package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acm-portal/internal/calendar"
	"acm-portal/internal/service"
)

// EventHandler expone los eventos del calendario del club.
type EventHandler struct {
	logger    *zap.Logger
	eventServ *service.EventService
}

func NewEventHandler(logger *zap.Logger, eventServ *service.EventService) *EventHandler {
	return &EventHandler{logger: logger, eventServ: eventServ}
}

// List maneja GET /events.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventServ.ListEvents(c.Request.Context())
	if err != nil {
		h.writeError(c, "list events failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Attendees maneja GET /events/:id/attendees.
func (h *EventHandler) Attendees(c *gin.Context) {
	attendees, err := h.eventServ.Attendees(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get attendees failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

// RSVP maneja POST /events/:id/rsvp con el email del token.
func (h *EventHandler) RSVP(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	attendees, err := h.eventServ.RSVP(c.Request.Context(), c.Param("id"), claims.Email)
	if err != nil {
		h.writeError(c, "rsvp failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

// CancelRSVP maneja DELETE /events/:id/rsvp.
func (h *EventHandler) CancelRSVP(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "Unauthorized"))
		return
	}
	attendees, err := h.eventServ.CancelRSVP(c.Request.Context(), c.Param("id"), claims.Email)
	if err != nil {
		h.writeError(c, "cancel rsvp failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

func (h *EventHandler) writeError(c *gin.Context, logMsg string, err error) {
	switch {
	case errors.Is(err, calendar.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, errorBody("calendar_unavailable", "Calendar is not configured"))
	case errors.Is(err, calendar.ErrEventNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "Event not found"))
	case errors.Is(err, service.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, errorBody("invalid_event", "Invalid event id"))
	case errors.Is(err, service.ErrNoAttendees):
		c.JSON(http.StatusNotFound, errorBody("no_attendees", "No attendees found"))
	case errors.Is(err, service.ErrAttendeeNotFound):
		c.JSON(http.StatusNotFound, errorBody("attendee_not_found", "No user found"))
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusBadGateway, errorBody("calendar_error", "Calendar request failed"))
	}
}
