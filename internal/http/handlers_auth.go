package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	"github.com/parceldesk/ops-api/internal/service"
)

// AuthMachineInterface defines the auth machine operations the handlers use.
type AuthMachineInterface interface {
	Login(ctx context.Context, principalID, secret string) (*domainauth.Session, error)
	Logout(ctx context.Context) error
	State() service.AuthState
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Machine AuthMachineInterface
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	PrincipalID string `json:"principal_id"`
	Secret      string `json:"secret"`
}

// sessionResponse is the wire shape of an authenticated session.
type sessionResponse struct {
	PrincipalID  string   `json:"principal_id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
	IssuedAt     string   `json:"issued_at"`
}

func toSessionResponse(sess *domainauth.Session) sessionResponse {
	caps := sess.Capabilities.List()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return sessionResponse{
		PrincipalID:  sess.Identity.ID,
		Email:        sess.Identity.Email,
		FirstName:    sess.Identity.FirstName,
		LastName:     sess.Identity.LastName,
		Role:         string(sess.Identity.Role),
		Capabilities: names,
		IssuedAt:     sess.IssuedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.PrincipalID == "" || req.Secret == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("principal_id and secret are required"),
		})
		return
	}

	sess, err := h.Machine.Login(r.Context(), req.PrincipalID, req.Secret)
	if err != nil {
		h.logger().WarnContext(r.Context(), "login request failed", "principal", req.PrincipalID)
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// Logout handles POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Machine.Logout(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Session handles GET /auth/session, reporting the current lifecycle phase
// and, when authenticated, the live session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	state := h.Machine.State()

	body := map[string]any{"phase": string(state.Phase)}
	if state.Phase == service.PhaseAuthenticated && state.Session != nil {
		body["session"] = toSessionResponse(state.Session)
	}
	if state.Phase == service.PhaseFailed && state.Err != nil {
		body["error"] = state.Err.Error()
	}
	WriteJSON(w, http.StatusOK, body)
}
