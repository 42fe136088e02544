// Package http exposes a small read-only status API for the web layer.
// Every registry read is marshalled onto the orchestrator loop; nothing
// here touches room state directly.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skylanix/MamieHenriette/internal/config"
)

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, ctl *StatusController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", ctl.Health)
	api := r.Group("/api")
	{
		api.GET("/rooms", ctl.ListRooms)
		api.GET("/rooms/:guild/:owner", ctl.GetRoom)
	}
	return r
}
