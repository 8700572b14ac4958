package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shopmart/shopmart-backend/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","quantity":2}`))

	var payload samplePayload
	require.NoError(t, DecodeJSONBody(req, &payload))
	assert.Equal(t, "a@b.com", payload.Email)
	assert.Equal(t, 2, payload.Quantity)
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","quantity":1,"extra":true}`))

	var payload samplePayload
	require.Error(t, DecodeJSONBody(req, &payload))
}

func TestDecodeJSONBodyFieldMessages(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","quantity":0}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 1", details["quantity"])
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abc  ", 0))
	assert.Equal(t, "ab", SanitizeString("abcd", 2))
}
