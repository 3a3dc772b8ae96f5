package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"nfamatch/internal/syntax"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": errorBody(errors.New(message)),
	})
}

// decodeBody decodes a JSON request body of at most limit bytes into v. On
// failure it writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// errorBody describes err for API responses. Pattern errors carry their
// kind and the byte position of the offending character.
func errorBody(err error) map[string]interface{} {
	body := map[string]interface{}{
		"message": err.Error(),
	}
	switch {
	case errors.Is(err, syntax.ErrLex):
		body["kind"] = "lex"
	case errors.Is(err, syntax.ErrSyntax):
		body["kind"] = "syntax"
	default:
		return body
	}
	if pos, ok := syntax.Position(err); ok {
		body["position"] = pos
	}
	return body
}

// writeFailure maps registry and pattern errors to HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, syntax.ErrLex), errors.Is(err, syntax.ErrSyntax),
		errors.Is(err, ErrEmptyPatternName):
		status = http.StatusBadRequest
	case errors.Is(err, ErrPatternTooLong), errors.Is(err, ErrTextTooLong),
		errors.Is(err, ErrBodyTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrPatternNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrPatternExists):
		status = http.StatusConflict
	case errors.Is(err, ErrTooManyPatterns):
		status = http.StatusInsufficientStorage
	}
	writeJSON(w, status, map[string]interface{}{
		"error": errorBody(err),
	})
}
