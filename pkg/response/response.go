// Package response renders handler results as JSON, in the envelope the
// teacher's handler package already assumed existed (its router.go and
// packaging.go import it, though no copy of it shipped with the
// retrieved sources — this is a from-scratch fill-in of that gap, kept
// deliberately small and in the same call shape: JSON(w, status, body),
// Error(w, status, message)).
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a {"error": message} JSON body with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
