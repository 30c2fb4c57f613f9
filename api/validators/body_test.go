package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/poojakit/poojakit-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func request(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var dest loginBody
	err := DecodeJSONBody(request(`{"email":"asha@example.com","password":"secret-pw"}`), &dest)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", dest.Email)
}

func TestDecodeJSONBodyIgnoresUnknownFields(t *testing.T) {
	// older storefront clients send extra fields like userToken
	var dest loginBody
	err := DecodeJSONBody(request(`{"email":"asha@example.com","password":"secret-pw","userToken":"abc"}`), &dest)
	assert.NoError(t, err)
}

func TestDecodeJSONBodyMalformedJSON(t *testing.T) {
	var dest loginBody
	err := DecodeJSONBody(request(`{"email":`), &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyFailedValidation(t *testing.T) {
	var dest loginBody
	err := DecodeJSONBody(request(`{"email":"not-an-email","password":"secret-pw"}`), &dest)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = DecodeJSONBody(request(`{"email":"asha@example.com","password":"short"}`), &loginBody{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
