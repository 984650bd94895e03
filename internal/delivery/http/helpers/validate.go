package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"eventmanagement/internal/validation"
)

// maxBodyBytes caps request bodies accepted by DecodeAndValidate.
const maxBodyBytes = 1 << 20

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and checks its `validate` tags. On decode or validation failure it writes a 400 JSON
// error and returns false. Callers should return immediately when it returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return false
	}
	if errs := validation.Validate(dest); len(errs) > 0 {
		WriteValidationError(w, validation.Messages(errs))
		return false
	}
	return true
}

// PathID parses the named path value as a positive int64 ID. On failure it writes a 400
// JSON error and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name+": "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}
