package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tandem-app/tandem/internal/engine"
	"github.com/tandem-app/tandem/internal/models"
)

type createChallengeReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) createChallenge(c *gin.Context) {
	var req createChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	ch, err := s.Engine.CreateChallenge(c.Param("id"), MustUserID(c), req.Title, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": ch})
}

type completeChallengeReq struct {
	Status     string              `json:"status"`
	Reflection string              `json:"reflection"`
	Tags       *models.FeelingTags `json:"tags"`
	PhotoRef   string              `json:"photo_ref"`
}

func (s *Server) completeChallenge(c *gin.Context) {
	var req completeChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	ch, err := s.Engine.CompleteChallenge(c.Param("id"), MustUserID(c), engine.CompletionInput{
		Status:     models.CompletionStatus(req.Status),
		Reflection: req.Reflection,
		Tags:       req.Tags,
		PhotoRef:   req.PhotoRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ch})
}

func (s *Server) getFeed(c *gin.Context) {
	items, err := s.Engine.Feed(MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []models.ActivityItem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
