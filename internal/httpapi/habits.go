package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tandem-app/tandem/internal/engine"
	"github.com/tandem-app/tandem/internal/models"
)

type proposeHabitReq struct {
	PartnershipID string `json:"partnership_id" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Category      string `json:"category"`
	Frequency     string `json:"frequency"`
	DurationDays  int    `json:"duration_days"`
}

func (s *Server) proposeHabit(c *gin.Context) {
	var req proposeHabitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	h, err := s.Engine.ProposeHabit(req.PartnershipID, MustUserID(c), engine.HabitAttributes{
		Name:         req.Name,
		Category:     req.Category,
		Frequency:    models.HabitFrequency(req.Frequency),
		DurationDays: req.DurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": h})
}

func (s *Server) approveHabit(c *gin.Context) {
	h, err := s.Engine.ResolveApproval(c.Param("id"), MustUserID(c), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h})
}

func (s *Server) rejectHabit(c *gin.Context) {
	h, err := s.Engine.ResolveApproval(c.Param("id"), MustUserID(c), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h})
}

func (s *Server) dismissHabit(c *gin.Context) {
	if err := s.Engine.Dismiss(c.Param("id"), MustUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "dismissed"})
}

func (s *Server) passTurn(c *gin.Context) {
	h, err := s.Engine.PassTurn(c.Param("id"), MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h})
}

func (s *Server) listHabits(c *gin.Context) {
	habits, err := s.Engine.HabitsFor(c.Param("id"), MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": habits})
}
