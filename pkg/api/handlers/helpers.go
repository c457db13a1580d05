package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is the shared struct-tag validator for request bodies across
// every handler in this package (SPEC_FULL §10.6: validation parity with
// the reference system's DRF serializers, expressed as Go struct tags
// instead of re-deriving field-by-field checks by hand).
var validate = validator.New()

// decodeJSONBody decodes a JSON request body into v, writing a 400 response
// and returning false on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// decodeAndValidate decodes a JSON request body into v and runs struct-tag
// validation on it, writing a 400 response and returning false on either
// failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSONBody(w, r, v) {
		return false
	}
	if err := validate.Struct(v); err != nil {
		BadRequest(w, err.Error())
		return false
	}
	return true
}
