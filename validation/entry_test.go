package validation

import (
	"strings"
	"testing"

	"cafefinder/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() NewEntryForm {
	return NewEntryForm{
		Name:        " Blue Bottle ",
		MapURL:      "https://maps.example/blue-bottle",
		Zipcode:     "02108",
		City:        "Boston",
		HasSockets:  "YES",
		HasToilet:   "no",
		HasWifi:     "Yes",
		CoffeePrice: "$3-$4",
	}
}

func TestValidateNew(t *testing.T) {
	v := New()

	entry, err := v.ValidateNew(validForm())
	require.NoError(t, err)
	assert.Equal(t, model.CafeEntry{
		Name:        "Blue Bottle",
		MapURL:      "https://maps.example/blue-bottle",
		Zipcode:     "02108",
		City:        "Boston",
		HasSockets:  true,
		HasToilet:   false,
		HasWifi:     true,
		CoffeePrice: model.PriceThreeToFour,
	}, entry)
}

func TestValidateNewFailures(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		mutate func(*NewEntryForm)
		field  string
		want   error
	}{
		{"EmptyName", func(f *NewEntryForm) { f.Name = "" }, "name", model.ErrMissingField},
		{"BlankCity", func(f *NewEntryForm) { f.City = "   " }, "city", model.ErrMissingField},
		{"MissingMapURL", func(f *NewEntryForm) { f.MapURL = "" }, "map_url", model.ErrMissingField},
		{"MissingFlag", func(f *NewEntryForm) { f.HasWifi = "" }, "has_wifi", model.ErrMissingField},
		{"BadFlag", func(f *NewEntryForm) { f.HasSockets = "maybe" }, "has_sockets", model.ErrInvalidValue},
		{"NumericFlag", func(f *NewEntryForm) { f.HasToilet = "1" }, "has_toilet", model.ErrInvalidValue},
		{"BadPrice", func(f *NewEntryForm) { f.CoffeePrice = "$100" }, "coffee_price", model.ErrInvalidValue},
		{"MissingPrice", func(f *NewEntryForm) { f.CoffeePrice = "" }, "coffee_price", model.ErrMissingField},
		{"LongZipcode", func(f *NewEntryForm) { f.Zipcode = "12345678901" }, "zipcode", model.ErrInvalidValue},
		{"LongName", func(f *NewEntryForm) { f.Name = strings.Repeat("x", 251) }, "name", model.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			_, err := v.ValidateNew(form)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestValidateNewReportsFirstField(t *testing.T) {
	_, err := New().ValidateNew(NewEntryForm{})

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)
	assert.Equal(t, "name is required", fe.Error())
}

func TestValidateUpdate(t *testing.T) {
	v := New()

	t.Run("Partial", func(t *testing.T) {
		patch, err := v.ValidateUpdate(UpdateEntryForm{HasWifi: "NO", CoffeePrice: "$9 and up"})
		require.NoError(t, err)

		assert.Nil(t, patch.HasSockets)
		assert.Nil(t, patch.HasToilet)
		require.NotNil(t, patch.HasWifi)
		assert.False(t, *patch.HasWifi)
		require.NotNil(t, patch.CoffeePrice)
		assert.Equal(t, model.PriceNineAndUp, *patch.CoffeePrice)
	})

	t.Run("Empty", func(t *testing.T) {
		patch, err := v.ValidateUpdate(UpdateEntryForm{})
		require.NoError(t, err)
		assert.True(t, patch.Empty())
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := v.ValidateUpdate(UpdateEntryForm{CoffeePrice: "free"})
		assert.ErrorIs(t, err, model.ErrInvalidValue)

		_, err = v.ValidateUpdate(UpdateEntryForm{HasSockets: "true"})
		assert.ErrorIs(t, err, model.ErrInvalidValue)
	})
}

func TestParseFlag(t *testing.T) {
	for _, token := range []string{"YES", "yes", " Yes "} {
		b, ok := ParseFlag(token)
		assert.True(t, ok, token)
		assert.True(t, b, token)
	}
	b, ok := ParseFlag("NO")
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = ParseFlag("y")
	assert.False(t, ok)

	assert.Equal(t, "YES", FormatFlag(true))
	assert.Equal(t, "NO", FormatFlag(false))
}
