package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusTeapot, map[string]int{"n": 1}))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	got := GeneralError(errors.New("boom"))
	assert.Equal(t, Response{Status: StatusError, Error: "boom"}, got)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":"boom"}`, string(b))
}

func TestValidationErrorMessages(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0,lte=150"`
		Code  string `validate:"len=3"`
	}

	err := validator.New().Struct(input{Email: "nope", Age: 200, Code: "x"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	got := ValidationError(verrs)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t,
		"field Name is required, field Email must be a valid email address, field Age must be at most 150, field Code is invalid",
		got.Error)
}

func TestValidationErrorLowerBound(t *testing.T) {
	type input struct {
		Age int `validate:"gte=0"`
	}

	err := validator.New().Struct(input{Age: -3})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	assert.Equal(t, "field Age must be at least 0", ValidationError(verrs).Error)
}
