package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cafefinder/model"

	"github.com/go-playground/validator/v10"
)

const (
	FlagYes = "YES"
	FlagNo  = "NO"
)

// NewEntryForm is the raw submission for a new cafe.
type NewEntryForm struct {
	Name        string `form:"name" json:"name" validate:"required,max=250"`
	MapURL      string `form:"map_url" json:"map_url" validate:"required,max=500"`
	Zipcode     string `form:"zipcode" json:"zipcode" validate:"required,max=10"`
	City        string `form:"city" json:"city" validate:"required,max=30"`
	HasSockets  string `form:"has_sockets" json:"has_sockets" validate:"required,flag"`
	HasToilet   string `form:"has_toilet" json:"has_toilet" validate:"required,flag"`
	HasWifi     string `form:"has_wifi" json:"has_wifi" validate:"required,flag"`
	CoffeePrice string `form:"coffee_price" json:"coffee_price" validate:"required,price_tier"`
}

// UpdateEntryForm carries the editable fields. Blank fields are left as they are.
type UpdateEntryForm struct {
	HasSockets  string `form:"has_sockets" json:"has_sockets" validate:"omitempty,flag"`
	HasToilet   string `form:"has_toilet" json:"has_toilet" validate:"omitempty,flag"`
	HasWifi     string `form:"has_wifi" json:"has_wifi" validate:"omitempty,flag"`
	CoffeePrice string `form:"coffee_price" json:"coffee_price" validate:"omitempty,price_tier"`
}

// FieldError names the offending field. It unwraps to model.ErrMissingField
// or model.ErrInvalidValue.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, model.ErrMissingField) {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s has an invalid value %q", e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("flag", func(fl validator.FieldLevel) bool {
		_, ok := ParseFlag(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("price_tier", func(fl validator.FieldLevel) bool {
		return model.PriceTier(fl.Field().String()).Valid()
	})
	return &Validator{validate: v}
}

// ValidateNew normalises form into a cafe entry ready for the store.
func (v *Validator) ValidateNew(form NewEntryForm) (model.CafeEntry, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.MapURL = strings.TrimSpace(form.MapURL)
	form.Zipcode = strings.TrimSpace(form.Zipcode)
	form.City = strings.TrimSpace(form.City)
	form.HasSockets = strings.TrimSpace(form.HasSockets)
	form.HasToilet = strings.TrimSpace(form.HasToilet)
	form.HasWifi = strings.TrimSpace(form.HasWifi)
	form.CoffeePrice = strings.TrimSpace(form.CoffeePrice)

	if err := v.check(form); err != nil {
		return model.CafeEntry{}, err
	}

	sockets, _ := ParseFlag(form.HasSockets)
	toilet, _ := ParseFlag(form.HasToilet)
	wifi, _ := ParseFlag(form.HasWifi)
	return model.CafeEntry{
		Name:        form.Name,
		MapURL:      form.MapURL,
		Zipcode:     form.Zipcode,
		City:        form.City,
		HasSockets:  sockets,
		HasToilet:   toilet,
		HasWifi:     wifi,
		CoffeePrice: model.PriceTier(form.CoffeePrice),
	}, nil
}

// ValidateUpdate turns form into a patch of the editable fields only.
func (v *Validator) ValidateUpdate(form UpdateEntryForm) (model.EntryPatch, error) {
	form.HasSockets = strings.TrimSpace(form.HasSockets)
	form.HasToilet = strings.TrimSpace(form.HasToilet)
	form.HasWifi = strings.TrimSpace(form.HasWifi)
	form.CoffeePrice = strings.TrimSpace(form.CoffeePrice)

	if err := v.check(form); err != nil {
		return model.EntryPatch{}, err
	}

	var patch model.EntryPatch
	patch.HasSockets = optionalFlag(form.HasSockets)
	patch.HasToilet = optionalFlag(form.HasToilet)
	patch.HasWifi = optionalFlag(form.HasWifi)
	if form.CoffeePrice != "" {
		price := model.PriceTier(form.CoffeePrice)
		patch.CoffeePrice = &price
	}
	return patch, nil
}

// ParseFlag accepts YES or NO in any letter case.
func ParseFlag(token string) (value bool, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case FlagYes:
		return true, true
	case FlagNo:
		return false, true
	}
	return false, false
}

func FormatFlag(b bool) string {
	if b {
		return FlagYes
	}
	return FlagNo
}

func optionalFlag(token string) *bool {
	if token == "" {
		return nil
	}
	b, _ := ParseFlag(token)
	return &b
}

// check reports the first failing field in declaration order.
func (v *Validator) check(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	reason := model.ErrInvalidValue
	if fe.Tag() == "required" {
		reason = model.ErrMissingField
	}
	return &FieldError{
		Field: fe.Field(),
		Value: fmt.Sprint(fe.Value()),
		Err:   reason,
	}
}
