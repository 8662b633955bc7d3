package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/config"
	"github.com/chatup/chatup-server/internal/core"
	"github.com/chatup/chatup-server/internal/store"
)

// NewServer builds the HTTP server: REST API, push-channel endpoint,
// health and metrics.
func NewServer(
	presence *core.Presence,
	router *core.Router,
	st store.Store,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	userHandlers := NewUserHandlers(st, presence, router, logger)
	messageHandlers := NewMessageHandlers(st, router, logger)
	wsHandler := NewWSHandler(presence, logger)

	api := engine.Group("/api")
	{
		api.POST("/users", userHandlers.Create)
		api.POST("/users/login", userHandlers.Login)
		api.GET("/users", userHandlers.List)
		api.GET("/users/:id", userHandlers.GetByID)
		api.GET("/users/status/:status", userHandlers.ListByStatus)
		api.PUT("/users/status", userHandlers.UpdateStatus)
		api.POST("/users/:id/kick", userHandlers.Kick)
		api.PUT("/users/:id/ban", userHandlers.Ban)

		api.POST("/messages/:receiver_id", messageHandlers.Create)
		api.GET("/messages/general", messageHandlers.ListGeneral)
		api.GET("/messages/:receiver_id/:sender_id", messageHandlers.ListBetween)
		api.GET("/messages/:receiver_id/:sender_id/latest", messageHandlers.Latest)
		api.GET("/messages/:receiver_id/:sender_id/unread", messageHandlers.CountUnread)
		api.PUT("/messages/:receiver_id/read", messageHandlers.MarkRead)
		api.DELETE("/messages/:id", messageHandlers.Delete)
	}

	engine.GET("/ws/:user_id", wsHandler.Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
