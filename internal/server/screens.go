package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billingconsole/internal/authorization"
	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/smallbiznis/billingconsole/internal/communitycontext"
	"github.com/smallbiznis/billingconsole/internal/observability/logger"
	"go.uber.org/zap"
)

type openScreenRequest struct {
	CommunityID string `json:"community_id"`
	Modal       bool   `json:"modal"`
}

type enterScreenRequest struct {
	Modal *bool `json:"modal"`
}

type submitCardRequest struct {
	domain.BillingForm
	CardToken string `json:"card_token"`
}

type screenResponse struct {
	ScreenID string      `json:"screen_id"`
	View     domain.View `json:"view"`
}

func (s *Server) OpenScreen(c *gin.Context) {
	var req openScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	communityID := strings.TrimSpace(req.CommunityID)
	if communityID == "" {
		AbortWithError(c, newValidationError("community_id", "required", "community_id is required"))
		return
	}
	if err := s.authorize(c, communityID, authorization.ObjectBilling, authorization.ActionBillingView); err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := communitycontext.WithCommunity(c.Request.Context(), communitycontext.Community{ID: communityID})
	screen, err := s.screens.Open(ctx, req.Modal)
	if screen == nil {
		AbortWithError(c, err)
		return
	}
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("screen opened with incomplete data",
			zap.String("screen_id", screen.ID()),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, screenResponse{ScreenID: screen.ID(), View: screen.View()})
}

func (s *Server) GetScreen(c *gin.Context) {
	screen := screenFromContext(c)
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) EnterScreen(c *gin.Context) {
	screen := screenFromContext(c)

	var req enterScreenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	if req.Modal != nil {
		screen.SetModal(*req.Modal)
	}
	screen.Enter()
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) RequestCardUpdate(c *gin.Context) {
	screen := screenFromContext(c)
	redirectURL, err := screen.RequestCardUpdate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"redirect_url": redirectURL,
		"view":         screen.View(),
	})
}

func (s *Server) BeginCapture(c *gin.Context) {
	screen := screenFromContext(c)
	if err := screen.BeginCapture(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

// SubmitCard answers 200 for every settled submission; the outcome and the
// screen's notices tell the presenter what happened.
func (s *Server) SubmitCard(c *gin.Context) {
	screen := screenFromContext(c)

	var req submitCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if token := strings.TrimSpace(req.CardToken); token != "" {
		if err := screen.InputCard(token); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	outcome, err := screen.Submit(c.Request.Context(), req.BillingForm)
	if outcome == "" {
		AbortWithError(c, err)
		return
	}
	if err != nil {
		logger.WithContext(c.Request.Context(), s.log).Warn("billing method submission failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"view":    screen.View(),
	})
}

func (s *Server) PageInvoices(c *gin.Context) {
	screen := screenFromContext(c)
	direction, err := domain.ParseDirection(strings.TrimSpace(c.Query("direction")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := screen.Page(c.Request.Context(), direction); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, screen.View())
}

func (s *Server) DrainNotices(c *gin.Context) {
	screen := screenFromContext(c)
	c.JSON(http.StatusOK, gin.H{"data": screen.Notices().Drain()})
}

func (s *Server) CloseScreen(c *gin.Context) {
	screen := screenFromContext(c)
	c.JSON(http.StatusOK, gin.H{"refresh_needed": screen.Close()})
}

func (s *Server) DeleteScreen(c *gin.Context) {
	screen := screenFromContext(c)
	if err := s.screens.Remove(screen.ID()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
