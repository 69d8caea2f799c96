package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billingconsole/internal/authorization"
	"github.com/smallbiznis/billingconsole/internal/broadcast"
)

type broadcastRequest struct {
	Type        string `json:"type"`
	CommunityID string `json:"community_id"`
}

// PublishBroadcast lets the host application announce status changes.
func (s *Server) PublishBroadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	kind, ok := broadcast.ParseKind(req.Type)
	if !ok {
		AbortWithError(c, newValidationError("type", "invalid_type", "unknown broadcast type"))
		return
	}

	communityID := strings.TrimSpace(req.CommunityID)
	scope := communityID
	if scope == "" {
		scope = "*"
	}
	if err := s.authorize(c, scope, authorization.ObjectBroadcast, authorization.ActionBroadcastSend); err != nil {
		AbortWithError(c, err)
		return
	}

	msg := broadcast.Message{Kind: kind}
	if kind == broadcast.KindLoadCommunityReady {
		msg = broadcast.LoadCommunityReady(communityID)
	}
	delivered := s.hub.Publish(msg)
	c.JSON(http.StatusAccepted, gin.H{"delivered": delivered})
}
