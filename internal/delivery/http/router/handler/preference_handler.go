package handler

import (
	"log/slog"
	"net/http"

	"pulse/internal/delivery/http/response"
	"pulse/internal/domain/entity"
	"pulse/internal/usecase"

	"github.com/labstack/echo/v4"
)

// PreferenceHandler holds dependencies for delivery-preference handlers
type PreferenceHandler struct {
	uc     usecase.PreferenceUsecase
	logger *slog.Logger
}

// NewPreferenceHandler is the constructor for PreferenceHandler
func NewPreferenceHandler(uc usecase.PreferenceUsecase, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		uc:     uc,
		logger: logger,
	}
}

// Get handles retrieving a user's delivery preferences
func (h *PreferenceHandler) Get(c echo.Context) error {
	userID := c.Param("userID")

	prefs, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, prefs, "Preferences retrieved successfully")
}

// Update handles replacing a user's delivery preferences
func (h *PreferenceHandler) Update(c echo.Context) error {
	var prefs entity.NotificationPreferences
	if err := c.Bind(&prefs); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid preferences input")
	}
	prefs.UserID = c.Param("userID")

	if err := h.uc.Update(c.Request().Context(), &prefs); err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, prefs, "Preferences updated successfully")
}
