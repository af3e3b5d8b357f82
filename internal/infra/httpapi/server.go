// internal/infra/httpapi/server.go
package httpapi

import (
	"context"
	"net/http"
	"time"

	"quiet_hours_notifier/internal/app"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server exposes the dispatch job over HTTP so an external scheduler (or an
// operator) can trigger a run. The endpoint owns no schedule of its own; it
// simply invokes the same DispatchService the cron trigger uses.
type Server struct {
	dispatch *app.DispatchService
	logger   *logrus.Entry
	srv      *http.Server
}

func NewServer(dispatch *app.DispatchService, logger *logrus.Entry, listenAddr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	// The function is invoked cross-origin by the scheduling frontend, so
	// every response carries permissive CORS headers and OPTIONS preflights
	// get an empty 200.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"authorization", "x-client-info", "apikey", "content-type"},
		OptionsResponseStatusCode: http.StatusOK,
	}))

	s := &Server{
		dispatch: dispatch,
		logger:   logger,
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: r,
		},
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/jobs/send-reminders", s.handleSendReminders)
	r.POST("/jobs/send-reminders", s.handleSendReminders)

	return s
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.logger.WithField("addr", s.srv.Addr).Info("HTTP trigger listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSendReminders(c *gin.Context) {
	summary, err := s.dispatch.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).Error("Reminder dispatch run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   summary.Message(),
		"processed": summary.Found,
	})
}
