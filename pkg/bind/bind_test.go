package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	PaymentMethod string `json:"paymentMethod" validate:"required" msg:"required=Payment method is required"`
}

func TestJSONValidates(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	var in input

	errs, err := JSON(r, &in)
	require.NoError(t, err)
	assert.Equal(t, "Payment method is required", errs.First())
}

func TestJSONDecodes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"paymentMethod":"cod"}`))
	var in input

	errs, err := JSON(r, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "cod", in.PaymentMethod)
}

func TestDecodeErrors(t *testing.T) {
	var in input

	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``)), &in)
	assert.ErrorIs(t, err, ErrEmptyBody)

	err = Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"paymentMethod":`)), &in)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestDecodeBodyLimit(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	body := `{"paymentMethod":"` + strings.Repeat("x", 64) + `"}`
	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &input{})
	assert.ErrorContains(t, err, "too large")
}
