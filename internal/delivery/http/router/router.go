// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pulse/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ScheduleHandler   *handler.ScheduleHandler
	ActivityHandler   *handler.ActivityHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	ExperimentHandler *handler.ExperimentHandler
	PreferenceHandler *handler.PreferenceHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	scheduleHandler   *handler.ScheduleHandler
	activityHandler   *handler.ActivityHandler
	analyticsHandler  *handler.AnalyticsHandler
	experimentHandler *handler.ExperimentHandler
	preferenceHandler *handler.PreferenceHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		scheduleHandler:   params.ScheduleHandler,
		activityHandler:   params.ActivityHandler,
		analyticsHandler:  params.AnalyticsHandler,
		experimentHandler: params.ExperimentHandler,
		preferenceHandler: params.PreferenceHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Scheduling queue routes
	notificationGroup := e.Group("/notifications")
	{
		notificationGroup.POST("/schedule", r.scheduleHandler.Schedule)
		notificationGroup.DELETE("/:id", r.scheduleHandler.Cancel)
		notificationGroup.GET("/pending", r.scheduleHandler.ListPending)
	}

	// Activity pattern routes
	activityGroup := e.Group("/activity")
	{
		activityGroup.POST("", r.activityHandler.RecordActivity)
		activityGroup.GET("/pattern", r.activityHandler.GetPattern)
		activityGroup.GET("/optimal-time", r.activityHandler.OptimalTime)
	}

	// Engagement analytics routes
	analyticsGroup := e.Group("/analytics")
	{
		analyticsGroup.POST("/interactions", r.analyticsHandler.RecordInteraction)
		analyticsGroup.GET("/summary", r.analyticsHandler.Summary)
	}

	// A/B experiment routes
	experimentGroup := e.Group("/experiments")
	{
		experimentGroup.POST("", r.experimentHandler.CreateTest)
		experimentGroup.GET("", r.experimentHandler.ListTests)
		experimentGroup.GET("/:id/analysis", r.experimentHandler.Analyze)
		experimentGroup.POST("/:id/send", r.experimentHandler.SendTestNotification)
		experimentGroup.POST("/:id/outcomes", r.experimentHandler.RecordOutcome)
	}

	// Delivery preference routes
	preferenceGroup := e.Group("/preferences")
	{
		preferenceGroup.GET("/:userID", r.preferenceHandler.Get)
		preferenceGroup.PUT("/:userID", r.preferenceHandler.Update)
	}
}
