package validation_test

import (
	"testing"

	"go-jobboard-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// 1x1 transparent PNG
const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestValidPhone(t *testing.T) {
	v := validator.New()
	validation.RegisterValidators(v)

	assert.NoError(t, v.Var("+84901234567", "valid_phone"))
	assert.NoError(t, v.Var("0901234567", "valid_phone"))
	assert.NoError(t, v.Var("", "valid_phone"), "empty is allowed; pair with required when mandatory")

	assert.Error(t, v.Var("not-a-phone", "valid_phone"))
	assert.Error(t, v.Var("12345", "valid_phone"), "too short")
	assert.Error(t, v.Var("+84 901 234 567", "valid_phone"), "no spaces")
}

func TestIsDataURIImage(t *testing.T) {
	assert.True(t, validation.IsDataURIImage(tinyPNG))

	assert.False(t, validation.IsDataURIImage("https://cdn.example.com/a.png"), "remote URLs are not data URIs")
	assert.False(t, validation.IsDataURIImage("data:image/png;base64,!!notbase64!!"))
	assert.False(t, validation.IsDataURIImage("data:text/plain;base64,aGVsbG8="))
	assert.False(t, validation.IsDataURIImage("data:image/png;base64,aGVsbG8="), "valid base64 but not an image")
}
