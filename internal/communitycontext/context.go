package communitycontext

import (
	"context"
	"strings"
)

// Community is the managed community a request acts on.
type Community struct {
	ID   string
	Name string
}

type communityKey struct{}

// WithCommunity stores the managed community in the context. Blank ids are ignored.
func WithCommunity(ctx context.Context, c Community) context.Context {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, communityKey{}, c)
}

// FromContext returns the managed community, if set.
func FromContext(ctx context.Context) (Community, bool) {
	if ctx == nil {
		return Community{}, false
	}
	c, ok := ctx.Value(communityKey{}).(Community)
	if !ok || c.ID == "" {
		return Community{}, false
	}
	return c, true
}

func IDFromContext(ctx context.Context) (string, bool) {
	c, ok := FromContext(ctx)
	return c.ID, ok
}
