package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketpod/internal/api/handler"
)

// healthChecker reports whether the backing database is reachable
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func healthHandler(db healthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "podcast-api-service",
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "podcast-api-service",
		})
	}
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	var db healthChecker
	if deps.DBClient != nil {
		db = deps.DBClient
	}
	r.GET("/health", healthHandler(db))

	podcastHandler := handler.NewPodcastHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(UserIDMiddleware())
	{
		podcasts := v1.Group("/podcasts")
		{
			// POST /api/v1/podcasts - Create a new podcast job
			podcasts.POST("", podcastHandler.CreatePodcast)

			// GET /api/v1/podcasts - List the caller's podcast jobs
			podcasts.GET("", podcastHandler.ListPodcasts)

			// GET /api/v1/podcasts/:id - Get podcast job details
			podcasts.GET("/:id", podcastHandler.GetPodcast)

			// GET /api/v1/podcasts/:id/audio - Get a download link for the audio
			podcasts.GET("/:id/audio", podcastHandler.GetAudioLink)

			// DELETE /api/v1/podcasts/:id - Delete a podcast job
			podcasts.DELETE("/:id", podcastHandler.DeletePodcast)
		}
	}

	return r
}
