package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/billingconsole/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginCaptureCreatesOneWidget(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(t)
	w.Enter()

	require.NoError(t, w.BeginCapture(context.Background()))
	require.NoError(t, w.BeginCapture(context.Background()))

	widget := f.provider.widget(t)
	assert.Equal(t, []string{domain.AnchorInline, domain.AnchorInline}, widget.mounts)
	assert.Equal(t, 1, f.provider.elementsCalls)
	assert.Equal(t, []string{"en"}, f.provider.locales)
	assert.Equal(t, "#666EE8", f.provider.styles[0].IconColor)
	assert.Equal(t, "18px", f.provider.styles[0].FontSize)

	card := w.View().Card
	assert.True(t, card.Mounted)
	assert.Equal(t, domain.AnchorInline, card.Anchor)
}

func TestAnchorIsChosenAtEnter(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(t)

	w.SetModal(true)
	assert.Equal(t, domain.AnchorInline, w.View().Anchor)

	w.Enter()
	require.NoError(t, w.BeginCapture(context.Background()))
	assert.Equal(t, domain.AnchorModal, w.View().Card.Anchor)

	w.SetModal(false)
	w.Enter()
	require.NoError(t, w.BeginCapture(context.Background()))

	widget := f.provider.widget(t)
	assert.Equal(t, []string{domain.AnchorModal, domain.AnchorInline}, widget.mounts)
}

func TestElementsFailureDisablesCapture(t *testing.T) {
	f := newFixture(t)
	f.provider.elementsErr = errOffline
	w := f.workflow(t)

	err := w.BeginCapture(context.Background())
	assert.ErrorIs(t, err, domain.ErrCaptureUnavailable)

	f.provider.elementsErr = nil
	err = w.BeginCapture(context.Background())
	assert.ErrorIs(t, err, domain.ErrCaptureUnavailable)
	assert.Equal(t, 1, f.provider.elementsCalls)
	assert.False(t, w.View().Card.Mounted)
	assert.Empty(t, w.Notices().Drain())
}

func TestFailedFirstMountKeepsWidget(t *testing.T) {
	f := newFixture(t)
	f.provider.failMounts = 1
	w := f.workflow(t)

	err := w.BeginCapture(context.Background())
	require.ErrorIs(t, err, errMountFailed)
	assert.NotErrorIs(t, err, domain.ErrCaptureUnavailable)
	assert.False(t, w.View().Card.Mounted)

	require.NoError(t, w.BeginCapture(context.Background()))

	widget := f.provider.widget(t)
	assert.Equal(t, []string{domain.AnchorInline}, widget.mounts)
	assert.Equal(t, 1, f.provider.elementsCalls)
	assert.True(t, w.View().Card.Mounted)
}

func TestInputCardRequiresWidget(t *testing.T) {
	f := newFixture(t)
	w := f.workflow(t)

	assert.ErrorIs(t, w.InputCard("tok_visa"), domain.ErrCaptureNotStarted)

	require.NoError(t, w.BeginCapture(context.Background()))
	require.NoError(t, w.InputCard("tok_visa"))
	assert.Equal(t, "tok_visa", f.provider.widget(t).Value())
}
