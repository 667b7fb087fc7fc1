package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createPartnershipReq struct {
	// Exactly one mode: invite a known user directly, or mint a shareable
	// code by leaving InviteeID empty and setting Code to true.
	InviteeID string `json:"invitee_id"`
	Code      bool   `json:"code"`
}

func (s *Server) createPartnership(c *gin.Context) {
	userID := MustUserID(c)

	var req createPartnershipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	if req.Code {
		p, err := s.Engine.CreateInviteCode(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": p})
		return
	}

	p, err := s.Engine.Invite(userID, req.InviteeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": p})
}

func (s *Server) listPartnerships(c *gin.Context) {
	p, err := s.Engine.PartnershipsFor(MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

type joinByCodeReq struct {
	Code string `json:"code" binding:"required"`
}

func (s *Server) joinByCode(c *gin.Context) {
	var req joinByCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	p, err := s.Engine.JoinByCode(req.Code, MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) acceptInvite(c *gin.Context) {
	p, err := s.Engine.AcceptInvite(c.Param("id"), MustUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) pausePartnership(c *gin.Context) {
	if err := s.Engine.Pause(c.Param("id"), MustUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused"})
}

func (s *Server) resumePartnership(c *gin.Context) {
	if err := s.Engine.Resume(c.Param("id"), MustUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (s *Server) completePartnership(c *gin.Context) {
	if err := s.Engine.Complete(c.Param("id"), MustUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

type postMessageReq struct {
	Body string `json:"body" binding:"required"`
}

func (s *Server) postMessage(c *gin.Context) {
	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	m, err := s.Engine.PostMessage(c.Param("id"), MustUserID(c), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": m})
}

func (s *Server) getTimeline(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		// Bad values fall back to the default window.
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := s.Engine.Timeline(c.Param("id"), MustUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}
