package handler

import (
	"log/slog"
	"net/http"
	"time"

	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExperimentHandler holds dependencies for A/B experiment handlers
type ExperimentHandler struct {
	uc     usecase.ExperimentUsecase
	clock  service.Clock
	logger *slog.Logger
}

// NewExperimentHandler is the constructor for ExperimentHandler
func NewExperimentHandler(uc usecase.ExperimentUsecase, clock service.Clock, logger *slog.Logger) *ExperimentHandler {
	return &ExperimentHandler{
		uc:     uc,
		clock:  clock,
		logger: logger,
	}
}

// CreateTest handles creating an experiment definition
func (h *ExperimentHandler) CreateTest(c echo.Context) error {
	var test entity.ABTest
	if err := c.Bind(&test); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid experiment definition")
	}

	created, err := h.uc.CreateTest(c.Request().Context(), &test)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, created, "Experiment created successfully")
}

// ListTests handles listing experiment definitions
func (h *ExperimentHandler) ListTests(c echo.Context) error {
	if c.QueryParam("active") == "true" {
		tests, err := h.uc.ListActiveTests(c.Request().Context(), h.clock.Now())
		if err != nil {
			return handleAppError(c, err)
		}

		return response.Success(c, http.StatusOK, tests, "Active experiments retrieved successfully")
	}

	tests, err := h.uc.ListTests(c.Request().Context())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, tests, "Experiments retrieved successfully")
}

// Analyze handles retrieving the comparative analysis of an experiment
func (h *ExperimentHandler) Analyze(c echo.Context) error {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "id must be a UUID")
	}

	report, err := h.uc.Analyze(c.Request().Context(), testID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, report, "Experiment analysis retrieved successfully")
}

// SendTestRequest represents the request body for a test delivery
type SendTestRequest struct {
	UserID  string                     `json:"user_id" validate:"required"`
	Content entity.NotificationContent `json:"content"`
}

// SendTestNotification handles delivering the user's variant of a test notification
func (h *ExperimentHandler) SendTestNotification(c echo.Context) error {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "id must be a UUID")
	}

	var req SendTestRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid test delivery input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.uc.SendTestNotification(c.Request().Context(), req.Content, testID, req.UserID)
	if err != nil {
		return handleAppError(c, err)
	}
	if result == nil {
		return response.Success(c, http.StatusOK, nil, "User is outside the experiment; nothing sent")
	}

	return response.Success(c, http.StatusCreated, result, "Test notification sent successfully")
}

// OutcomeRequest represents the request body for reporting a test outcome
type OutcomeRequest struct {
	NotificationID uuid.UUID              `json:"notification_id" validate:"required"`
	UserID         string                 `json:"user_id" validate:"required"`
	Kind           entity.InteractionKind `json:"kind" validate:"required,oneof=opened clicked converted"`
	At             *time.Time             `json:"at,omitempty"` // Defaults to now.
}

// RecordOutcome handles reporting an interaction on a test notification
func (h *ExperimentHandler) RecordOutcome(c echo.Context) error {
	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "id must be a UUID")
	}

	var req OutcomeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid outcome input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	at := h.clock.Now()
	if req.At != nil {
		at = *req.At
	}

	found, err := h.uc.RecordOutcome(c.Request().Context(), testID, req.NotificationID, req.UserID, req.Kind, at)
	if err != nil {
		return handleAppError(c, err)
	}
	if !found {
		return response.NotFound(c, "NOT_FOUND", "No result row matches that delivery")
	}

	return response.Success(c, http.StatusOK, nil, "Outcome recorded successfully")
}
