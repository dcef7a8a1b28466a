package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/resume-analyzer/apiserver/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// identityFromContext returns the authenticated user stored by
// RequireAuth. The user was re-resolved from the store on this request,
// so role and existence are current, not token-time snapshots.
func identityFromContext(ctx context.Context) (types.User, error) {
	user, ok := ctx.Value(contextIdentityKey).(types.User)
	if !ok || user.ID < 1 {
		return types.User{}, errors.New("missing identity")
	}
	return user, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Healthz responds to liveness probes.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
