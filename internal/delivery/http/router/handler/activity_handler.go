package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ActivityHandler holds dependencies for activity-pattern handlers
type ActivityHandler struct {
	uc     usecase.PatternUsecase
	clock  service.Clock
	logger *slog.Logger
}

// NewActivityHandler is the constructor for ActivityHandler
func NewActivityHandler(uc usecase.PatternUsecase, clock service.Clock, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		uc:     uc,
		clock:  clock,
		logger: logger,
	}
}

// RecordActivityRequest represents the request body for reporting user activity
type RecordActivityRequest struct {
	UserID   string     `json:"user_id" validate:"required"`
	ActiveAt *time.Time `json:"active_at,omitempty"` // Defaults to now.
}

// RecordActivity handles folding an observed activity into the user's pattern
func (h *ActivityHandler) RecordActivity(c echo.Context) error {
	var req RecordActivityRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid activity input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	activeAt := h.clock.Now()
	if req.ActiveAt != nil {
		activeAt = *req.ActiveAt
	}

	if err := h.uc.RecordActivity(c.Request().Context(), req.UserID, activeAt, nil); err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, nil, "Activity recorded successfully")
}

// GetPattern handles retrieving a user's learned activity pattern
func (h *ActivityHandler) GetPattern(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "user_id query parameter is required")
	}

	pattern, err := h.uc.GetPattern(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}
	if pattern == nil {
		return response.NotFound(c, "NOT_FOUND", "No activity observed for that user yet")
	}

	return response.Success(c, http.StatusOK, pattern, "Activity pattern retrieved successfully")
}

// OptimalTime handles computing the best delivery time for a user
func (h *ActivityHandler) OptimalTime(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "user_id query parameter is required")
	}

	notificationType := entity.NotificationType(c.QueryParam("type"))
	if notificationType == "" {
		notificationType = entity.TypeMotivational
	}

	optimal, err := h.uc.OptimalSendTime(c.Request().Context(), userID, notificationType, h.clock.Now())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"user_id":      userID,
		"type":         notificationType,
		"optimal_time": optimal,
	}, "Optimal send time computed successfully")
}
