// Package handler contains the HTTP handlers of the engine's API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ScheduleHandler holds dependencies for scheduling-related handlers
type ScheduleHandler struct {
	uc     usecase.SchedulerUsecase
	logger *slog.Logger
}

// NewScheduleHandler is the constructor for ScheduleHandler
func NewScheduleHandler(uc usecase.SchedulerUsecase, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		uc:     uc,
		logger: logger,
	}
}

// ScheduleRequest represents the request body for scheduling a notification
type ScheduleRequest struct {
	UserID     string                     `json:"user_id" validate:"required"`
	Content    entity.NotificationContent `json:"content"`
	SendAt     time.Time                  `json:"send_at" validate:"required"`
	Recurring  bool                       `json:"recurring"`
	Recurrence *entity.RecurrencePattern  `json:"recurrence,omitempty"`
}

// Schedule handles enqueuing a notification for delivery
func (h *ScheduleHandler) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid scheduling input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	entry, err := h.uc.Schedule(c.Request().Context(), &usecase.ScheduleRequest{
		UserID:     req.UserID,
		Content:    req.Content,
		SendAt:     req.SendAt,
		Recurring:  req.Recurring,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, entry, "Notification scheduled successfully")
}

// Cancel handles removing a pending notification
func (h *ScheduleHandler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "id must be a UUID")
	}

	removed, err := h.uc.Cancel(c.Request().Context(), id)
	if err != nil {
		return handleAppError(c, err)
	}
	if !removed {
		return response.NotFound(c, "NOTIFICATION_NOT_FOUND", "No pending notification with that id")
	}

	return response.Success(c, http.StatusOK, map[string]any{"cancelled": true}, "Notification cancelled successfully")
}

// ListPending handles retrieving a user's pending notifications
func (h *ScheduleHandler) ListPending(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "user_id query parameter is required")
	}

	pending, err := h.uc.ListPending(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, pending, "Pending notifications retrieved successfully")
}

// handleAppError maps application errors onto the unified response shape
func handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
