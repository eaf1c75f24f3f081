package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
	"github.com/parceldesk/ops-api/internal/service"
)

// fakeMachine implements AuthMachineInterface with canned behavior.
type fakeMachine struct {
	loginFunc  func(ctx context.Context, principalID, secret string) (*domainauth.Session, error)
	logoutFunc func(ctx context.Context) error
	state      service.AuthState
}

func (f *fakeMachine) Login(ctx context.Context, principalID, secret string) (*domainauth.Session, error) {
	if f.loginFunc != nil {
		return f.loginFunc(ctx, principalID, secret)
	}
	return nil, apperrors.InvalidCredentials("bad secret")
}

func (f *fakeMachine) Logout(ctx context.Context) error {
	if f.logoutFunc != nil {
		return f.logoutFunc(ctx)
	}
	return nil
}

func (f *fakeMachine) State() service.AuthState { return f.state }

func managerSession() *domainauth.Session {
	return &domainauth.Session{
		Identity: domainauth.Identity{
			ID:        "op-7",
			Email:     "dana.kim@example.com",
			FirstName: "Dana",
			LastName:  "Kim",
			Role:      domainauth.RoleManager,
			Status:    domainauth.StatusActive,
		},
		Capabilities: domainauth.Derive(domainauth.RoleManager),
		Token:        "tok-7",
		IssuedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoginHandlerSuccess(t *testing.T) {
	sess := managerSession()
	machine := &fakeMachine{
		loginFunc: func(_ context.Context, principalID, secret string) (*domainauth.Session, error) {
			assert.Equal(t, "op-7", principalID)
			assert.Equal(t, "s3cret", secret)
			return sess, nil
		},
	}
	h := &AuthHandlers{Machine: machine}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"principal_id":"op-7","secret":"s3cret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "op-7", body["principal_id"])
	assert.Equal(t, "manager", body["role"])
	assert.Contains(t, body["capabilities"], "shipment_management")
	assert.NotContains(t, body["capabilities"], "user_management")
	assert.Equal(t, "2024-01-01T12:00:00Z", body["issued_at"])
}

func TestLoginHandlerMissingFields(t *testing.T) {
	h := &AuthHandlers{Machine: &fakeMachine{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"principal_id":"op-7"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestLoginHandlerMalformedJSON(t *testing.T) {
	h := &AuthHandlers{Machine: &fakeMachine{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{bad`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestLoginHandlerErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", apperrors.InvalidCredentials("bad secret"), http.StatusUnauthorized},
		{"inactive identity", apperrors.IdentityInactive("account not active"), http.StatusForbidden},
		{"login in flight", apperrors.New(apperrors.ErrCodeAuthInProgress, "in flight"), http.StatusConflict},
		{"already authenticated", apperrors.New(apperrors.ErrCodeConflict, "log out first"), http.StatusConflict},
		{"provider down", apperrors.ProviderUnavailable(assert.AnError), http.StatusBadGateway},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := &fakeMachine{
				loginFunc: func(context.Context, string, string) (*domainauth.Session, error) {
					return nil, tt.err
				},
			}
			h := &AuthHandlers{Machine: machine}

			req := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"principal_id":"op-7","secret":"x"}`))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	h := &AuthHandlers{Machine: &fakeMachine{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged_out")
}

func TestLogoutHandlerDuringLogin(t *testing.T) {
	machine := &fakeMachine{
		logoutFunc: func(context.Context) error {
			return apperrors.New(apperrors.ErrCodeAuthInProgress, "await completion")
		},
	}
	h := &AuthHandlers{Machine: machine}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionHandlerPhases(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		h := &AuthHandlers{Machine: &fakeMachine{state: service.AuthState{Phase: service.PhaseAnonymous}}}

		rec := httptest.NewRecorder()
		h.Session(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "anonymous", body["phase"])
		assert.NotContains(t, body, "session")
	})

	t.Run("authenticated", func(t *testing.T) {
		state := service.AuthState{Phase: service.PhaseAuthenticated, Session: managerSession()}
		h := &AuthHandlers{Machine: &fakeMachine{state: state}}

		rec := httptest.NewRecorder()
		h.Session(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "authenticated", body["phase"])
		require.Contains(t, body, "session")
		sess := body["session"].(map[string]any)
		assert.Equal(t, "op-7", sess["principal_id"])
	})

	t.Run("failed", func(t *testing.T) {
		state := service.AuthState{
			Phase: service.PhaseFailed,
			Err:   apperrors.InvalidCredentials("bad secret"),
		}
		h := &AuthHandlers{Machine: &fakeMachine{state: state}}

		rec := httptest.NewRecorder()
		h.Session(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "failed", body["phase"])
		assert.Equal(t, "bad secret", body["error"])
	})
}
