package handler

import (
	"log/slog"
	"net/http"

	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler holds dependencies for engagement analytics handlers
type AnalyticsHandler struct {
	uc     usecase.AnalyticsUsecase
	logger *slog.Logger
}

// NewAnalyticsHandler is the constructor for AnalyticsHandler
func NewAnalyticsHandler(uc usecase.AnalyticsUsecase, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		uc:     uc,
		logger: logger,
	}
}

// InteractionRequest represents the request body for reporting an interaction
type InteractionRequest struct {
	NotificationID uuid.UUID              `json:"notification_id" validate:"required"`
	UserID         string                 `json:"user_id" validate:"required"`
	Kind           entity.InteractionKind `json:"kind" validate:"required,oneof=opened clicked dismissed"`
}

// RecordInteraction handles reporting an opened, clicked or dismissed event
func (h *AnalyticsHandler) RecordInteraction(c echo.Context) error {
	var req InteractionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid interaction input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	if err := h.uc.RecordInteraction(c.Request().Context(), req.NotificationID, req.UserID, req.Kind); err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Interaction recorded successfully")
}

// Summary handles retrieving a user's engagement rollup
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "user_id query parameter is required")
	}

	window := c.QueryParam("window")
	if window == "" {
		window = usecase.WindowWeek
	}

	summary, err := h.uc.Summary(c.Request().Context(), userID, window)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, summary, "Engagement summary retrieved successfully")
}
