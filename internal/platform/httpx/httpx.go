// Package httpx holds the JSON response helpers shared by every HTTP handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ShodmonX/taskflow-backend/internal/platform/apperr"
	"github.com/ShodmonX/taskflow-backend/internal/platform/validate"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorBody is the response shape for every failed request.
type ErrorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusOK is the body of endpoints that only acknowledge.
var StatusOK = map[string]string{"status": "ok"}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // connection may already be closed
		json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err to a status via its apperr kind. Unclassified errors
// become 500 with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	WriteJSON(w, status, ErrorBody{Status: status, Code: kind.String(), Message: apperr.MessageOf(err)})
}

// DecodeJSON reads one JSON object from r's body into dst. Unknown fields are
// rejected. Failures are apperr Invalid errors.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Invalid("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is required")
		}
		return apperr.Invalid("malformed JSON body")
	}
	return nil
}

// Bind decodes the body into dst and validates it.
func Bind(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// UUIDParam returns the chi URL parameter name in canonical form. A value that
// is not a UUID is an Invalid error, so it never reaches a UUID column.
func UUIDParam(r *http.Request, name string) (string, error) {
	return ParseUUID(chi.URLParam(r, name), name)
}

// ParseUUID validates raw as the UUID named name.
func ParseUUID(raw, name string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperr.Invalid("invalid " + name)
	}
	return id.String(), nil
}
