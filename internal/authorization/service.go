package authorization

import (
	"context"
	"errors"
)

// Service decides whether an actor may act on billing objects of a community.
type Service interface {
	Authorize(ctx context.Context, actor string, communityID string, object string, action string) error
}

var (
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidCommunity = errors.New("invalid_community")
	ErrInvalidObject    = errors.New("invalid_object")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrForbidden        = errors.New("forbidden")
)
