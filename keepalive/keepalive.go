// Package keepalive exposes a small HTTP server that uptime monitors can poll
// while the bot runs.
package keepalive

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"verifybot/stats"
)

type StatsSource interface {
	Last() stats.Snapshot
}

type Server struct {
	Router *gin.Engine
	srv    *http.Server
}

func New(addr string, source StatsSource) *Server {
	router := gin.New()

	router.Use(
		ginzap.RecoveryWithZap(zap.L(), true),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
		}),
	)
	router.HandleMethodNotAllowed = true

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "alive")
	})

	api := router.Group("/api")
	{
		// GET|HEAD /api/heartbeat	-> Used to check if the bot is alive
		api.GET("/heartbeat", heartbeat)
		api.HEAD("/heartbeat", heartbeat)

		// GET /api/stats		-> Latest guild, member and memory snapshot
		api.GET("/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, source.Last())
		})
	}

	return &Server{
		Router: router,
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Start serves in the background. Listen errors other than a clean shutdown
// are logged.
func (s *Server) Start() {
	go func() {
		zap.L().Info("keep-alive server listening", zap.String("addr", s.srv.Addr))

		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("keep-alive server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
