// Package health serves the liveness endpoint hosting platforms probe.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebot/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	// Body is the fixed liveness response.
	Body = "I'm alive!"

	shutdownTimeout = 5 * time.Second
)

type Server struct {
	address string
	logger  logging.Logger
	srv     *http.Server
}

func NewServer(address string, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router)

	return &Server{
		address: address,
		logger:  logger.With("module", "health_server"),
		srv:     &http.Server{Addr: address, Handler: router, ReadHeaderTimeout: 5 * time.Second},
	}
}

func RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, Body)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping health server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "health server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting health server", "address", s.address)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
