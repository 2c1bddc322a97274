package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Username string `json:"username" binding:"required,handle"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func validate(t *testing.T, payload any) error {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v.Struct(payload)
}

func TestValidPayloadPasses(t *testing.T) {
	err := validate(t, registerPayload{
		Username: "streamer1",
		Email:    "s1@example.com",
		Password: "longenough",
	})
	assert.NoError(t, err)
}

func TestToDetailsUsesJSONFieldNames(t *testing.T) {
	err := validate(t, registerPayload{
		Username: "abc", // below the handle minimum
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be 6 to 30 characters long", details["username"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "min length 8", details["password"])
}

func TestToDetailsRequired(t *testing.T) {
	err := validate(t, registerPayload{})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "is required", details["username"])
	assert.Equal(t, "is required", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
