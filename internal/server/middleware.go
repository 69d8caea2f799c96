package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	billingservice "github.com/smallbiznis/billingconsole/internal/billing/service"
	"github.com/smallbiznis/billingconsole/internal/communitycontext"
	obscontext "github.com/smallbiznis/billingconsole/internal/observability/context"
)

const (
	HeaderActor      = "X-Actor"
	contextActorKey  = "actor"
	contextScreenKey = "screen"
)

// ActorRequired reads the acting principal, "user:<id>" or "system".
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderActor))
		if actor == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextActorKey, actor)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// ScreenContext resolves :id and scopes the request to the screen's community.
func (s *Server) ScreenContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		screen, err := s.screens.Workflow(c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		ctx := obscontext.WithScreenID(c.Request.Context(), screen.ID())
		ctx = communitycontext.WithCommunity(ctx, communitycontext.Community{ID: screen.View().CommunityID})
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextScreenKey, screen)
		c.Next()
	}
}

func (s *Server) authorizeScreen(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		communityID, _ := communitycontext.IDFromContext(c.Request.Context())
		if err := s.authorize(c, communityID, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorize(c *gin.Context, communityID, object, action string) error {
	if s.authz == nil {
		return ErrForbidden
	}
	return s.authz.Authorize(c.Request.Context(), c.GetString(contextActorKey), communityID, object, action)
}

// LimitSubmissions throttles card submissions per community.
func (s *Server) LimitSubmissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}
		communityID, _ := communitycontext.IDFromContext(c.Request.Context())
		res := s.limiter.AllowSubmit(c.Request.Context(), communityID)
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func screenFromContext(c *gin.Context) *billingservice.Workflow {
	value, ok := c.Get(contextScreenKey)
	if !ok {
		return nil
	}
	screen, _ := value.(*billingservice.Workflow)
	return screen
}
