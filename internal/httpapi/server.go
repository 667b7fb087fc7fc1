// Package httpapi exposes the engine over HTTP. It owns request decoding,
// the auth middleware, and the mapping from the engine's error taxonomy to
// statuses; all business rules live in the engine.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tandem-app/tandem/internal/engine"
	"github.com/tandem-app/tandem/internal/errdefs"
)

type Server struct {
	Engine    *engine.Engine
	JWTSecret string
}

func NewServer(eng *engine.Engine, jwtSecret string) *Server {
	return &Server{Engine: eng, JWTSecret: jwtSecret}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := r.Group("/api/v1")
	authed.Use(AuthMiddleware(s.JWTSecret))

	authed.GET("/feed", s.getFeed)

	authed.POST("/partnerships", s.createPartnership)
	authed.GET("/partnerships", s.listPartnerships)
	authed.POST("/partnerships/join", s.joinByCode)
	authed.POST("/partnerships/:id/accept", s.acceptInvite)
	authed.POST("/partnerships/:id/pause", s.pausePartnership)
	authed.POST("/partnerships/:id/resume", s.resumePartnership)
	authed.POST("/partnerships/:id/complete", s.completePartnership)
	authed.GET("/partnerships/:id/habits", s.listHabits)
	authed.GET("/partnerships/:id/timeline", s.getTimeline)
	authed.POST("/partnerships/:id/messages", s.postMessage)

	authed.POST("/habits", s.proposeHabit)
	authed.POST("/habits/:id/approve", s.approveHabit)
	authed.POST("/habits/:id/reject", s.rejectHabit)
	authed.POST("/habits/:id/dismiss", s.dismissHabit)
	authed.POST("/habits/:id/pass", s.passTurn)
	authed.POST("/habits/:id/challenges", s.createChallenge)

	authed.POST("/challenges/:id/complete", s.completeChallenge)

	return r
}

// respondError translates the engine taxonomy into HTTP statuses. Every
// sentinel carries enough wrapped context for a specific client message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errdefs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, errdefs.ErrNotAuthorized), errors.Is(err, errdefs.ErrNotYourTurn):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errdefs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
