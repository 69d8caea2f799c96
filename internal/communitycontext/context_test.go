package communitycontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCommunityRoundTrip(t *testing.T) {
	ctx := WithCommunity(context.Background(), Community{ID: " c-1 ", Name: "Alpha"})
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "c-1", got.ID)
	assert.Equal(t, "Alpha", got.Name)
}

func TestWithCommunityIgnoresBlankID(t *testing.T) {
	ctx := WithCommunity(context.Background(), Community{ID: "  "})
	_, ok := IDFromContext(ctx)
	assert.False(t, ok)
}
