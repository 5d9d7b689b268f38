package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write JSON response")
	}
}

// writeDetail writes an error body in the {"detail": "..."} shape the client parses
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeValidationError mirrors the list-of-messages detail the backend returns for invalid input
func writeValidationError(w http.ResponseWriter, location, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"detail": []map[string]interface{}{
			{"loc": []string{location, field}, "msg": msg, "type": "value_error"},
		},
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}
