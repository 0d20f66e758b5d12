package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acm-portal/internal/domain"
	"acm-portal/internal/service"
)

// ContactHandler atiende el formulario de contacto publico.
type ContactHandler struct {
	logger      *zap.Logger
	contactServ *service.ContactService
}

func NewContactHandler(logger *zap.Logger, contactServ *service.ContactService) *ContactHandler {
	return &ContactHandler{logger: logger, contactServ: contactServ}
}

// ContactUs maneja POST /contact-us.
func (h *ContactHandler) ContactUs(c *gin.Context) {
	var req domain.ContactMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid contact request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Invalid request"))
		return
	}

	if err := h.contactServ.Send(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContact), errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, errorBody("invalid_request", "Name, email and message are required"))
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, errorBody("rate_limited", "Too many requests"))
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, errorBody("email_unavailable", "Email delivery unavailable"))
		default:
			h.logger.Error("contact us failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody("internal", "Could not send message"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
