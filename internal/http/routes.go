package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	"github.com/parceldesk/ops-api/internal/service"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Machine *service.AuthMachine
	Guard   service.Guard
	Logger  *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router. Every capability-gated
// route goes through RequireCapability so a denial is always a visible
// 401/403, never a silent no-op.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Machine: services.Machine, Logger: services.Logger}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/session", authHandlers.Session)

	// Capability listing is itself authenticated but not capability-gated.
	mux.Handle("GET /auth/capabilities", RequireAuth(services.Machine)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := GetSessionFromContext(r.Context())
			WriteJSON(w, http.StatusOK, toSessionResponse(sess).Capabilities)
		})))

	// Capability-gated mount points. The CRUD handlers themselves live in
	// the surrounding application; until mounted, an admitted request gets
	// an explicit 501 rather than a silent 404.
	gate := func(required domainauth.Capability) http.Handler {
		return RequireCapability(services.Machine, services.Guard, required)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				WriteJSON(w, http.StatusNotImplemented, map[string]string{"error": "not_implemented"})
			}))
	}
	mux.Handle("/api/packages/", gate(domainauth.CapPackageManagement))
	mux.Handle("/api/shipments/", gate(domainauth.CapShipmentManagement))
	mux.Handle("/api/users/", gate(domainauth.CapUserManagement))
	mux.Handle("/api/audit/", gate(domainauth.CapAuditLogs))

	return mux
}
