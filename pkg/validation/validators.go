package validation

import (
	"bytes"
	"encoding/base64"
	"image"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	// Register decoders for the avatar data-URI check. png/jpeg/gif come
	// from the standard image registry.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// E164-like phone: optional +, 7-15 digits
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// RegisterValidators registers custom validators on the shared instance.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_phone", ValidPhone)
}

// ValidPhone validates a phone number structure. Empty is allowed; combine
// with required when the field is mandatory.
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// IsDataURIImage reports whether s is a base64 data URI that decodes to a
// real png, jpeg, gif or webp image. Only the header is inspected; this is
// a cheap sanity check, not a full decode.
func IsDataURIImage(s string) bool {
	if !strings.HasPrefix(s, "data:image/") {
		return false
	}
	idx := strings.Index(s, ";base64,")
	if idx < 0 {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s[idx+len(";base64,"):])
	if err != nil {
		return false
	}
	_, _, err = image.DecodeConfig(bytes.NewReader(raw))
	return err == nil
}
