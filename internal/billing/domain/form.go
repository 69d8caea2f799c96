package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	paymentdomain "github.com/smallbiznis/billingconsole/internal/payment/domain"
)

// BillingForm is the flat billing-address form. Line2 is the only optional field.
type BillingForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// FieldError names a form field that failed validation.
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// ValidationError lists every invalid field of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidForm.Error(), strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidForm }

// Validate trims every field and checks required ones.
func (f *BillingForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Line1 = strings.TrimSpace(f.Line1)
	f.Line2 = strings.TrimSpace(f.Line2)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Country = strings.TrimSpace(f.Country)

	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: jsonField(fe.Field()), Code: fe.Tag()})
	}
	return out
}

// Owner nests the flat address fields under Address.
func (f BillingForm) Owner() paymentdomain.Owner {
	return paymentdomain.Owner{
		Name:  f.Name,
		Email: f.Email,
		Address: paymentdomain.Address{
			Line1:      f.Line1,
			Line2:      f.Line2,
			City:       f.City,
			State:      f.State,
			PostalCode: f.PostalCode,
			Country:    f.Country,
		},
	}
}

func (f BillingForm) IsZero() bool {
	return f == BillingForm{}
}

func jsonField(name string) string {
	switch name {
	case "PostalCode":
		return "postal_code"
	default:
		return strings.ToLower(name)
	}
}
