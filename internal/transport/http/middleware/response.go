package middleware

import (
	"encoding/json"
	"net/http"
)

type rejection struct {
	Error string `json:"error"`
}

// reject ends the chain with a JSON body shaped like the handler package's errors.
// 401s carry a Bearer challenge.
func reject(w http.ResponseWriter, status int, msg string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		h.Set("WWW-Authenticate", `Bearer realm="idv-gateway"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Error: msg})
}
