package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTrimsAndAllowsMissingLine2(t *testing.T) {
	form := BillingForm{
		Name: " Ada ", Email: "ada@example.com", Line1: "1 Main St",
		City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
	}
	require.NoError(t, form.Validate())
	assert.Equal(t, "Ada", form.Name)
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	form := BillingForm{Line2: "Apt 4"}
	err := form.Validate()
	require.ErrorIs(t, err, ErrInvalidForm)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 7)
	for _, f := range verr.Fields {
		assert.Equal(t, "required", f.Code)
	}
}

func TestOwnerNestsAddress(t *testing.T) {
	owner := BillingForm{Name: "Ada", Email: "a@x.io", Line1: "1", City: "c", State: "s", PostalCode: "p", Country: "US"}.Owner()
	assert.Equal(t, "Ada", owner.Name)
	assert.Equal(t, "1", owner.Address.Line1)
	assert.Equal(t, "p", owner.Address.PostalCode)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("next")
	require.NoError(t, err)
	assert.Equal(t, DirectionNext, d)
	assert.Equal(t, "first", DirectionNone.String())

	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestAnchorFor(t *testing.T) {
	assert.Equal(t, "card-element-billing", AnchorFor(false))
	assert.Equal(t, "card-element-billing-modal", AnchorFor(true))
}
