package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/accident-risk/internal/lookup"
)

var errTrailingData = eris.New("api: trailing data after JSON body")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"` // set for validation failures
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		zap.L().Warn("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeLookupError maps validation failures to 400 and everything else to 500.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := lookup.AsValidation(err); ok {
		zap.L().Debug("api: invalid request",
			zap.String("path", r.URL.Path),
			zap.String("field", ve.Field),
		)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
		return
	}
	zap.L().Error("api: request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decodeBody reads a single JSON object into v. An empty body leaves v
// untouched; anything after the object is rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
