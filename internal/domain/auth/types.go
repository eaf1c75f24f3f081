package auth

// Package auth contains domain-level types for authorization and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role classifies an authenticated principal. Roles form a closed set;
// there is no inheritance between them; each role's capabilities are
// declared independently in the permission table.
// Keep string form for easy persistence.
type Role string

const (
	RoleWorker     Role = "worker"
	RoleSpecialist Role = "specialist"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Roles lists every recognized role, in order of increasing reach.
// The order is informational only; authorization is set-based, not ordinal.
var Roles = []Role{RoleWorker, RoleSpecialist, RoleManager, RoleAdmin, RoleSuperAdmin}

// Known reports whether r is a member of the closed role set.
func (r Role) Known() bool {
	switch r {
	case RoleWorker, RoleSpecialist, RoleManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state attached to an Identity.
// Only active identities may hold a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusReported  Status = "reported"
)

// Known reports whether s is a member of the closed status set.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusReported:
		return true
	}
	return false
}

// Capability is an atomic, named permission to perform one class of
// protected action. Capabilities have no hierarchy; membership is set-based.
type Capability string

const (
	CapPackageIntake      Capability = "package_intake"
	CapPackageManagement  Capability = "package_management"
	CapShipmentCreation   Capability = "shipment_creation"
	CapShipmentManagement Capability = "shipment_management"
	CapUserManagement     Capability = "user_management"
	CapAnalyticsView      Capability = "analytics_view"
	CapAnalyticsReport    Capability = "analytics_report"
	CapReports            Capability = "reports"
	CapSystemSettings     Capability = "system_settings"
	CapAuditLogs          Capability = "audit_logs"
)

// Capabilities lists every capability in the closed set.
var Capabilities = []Capability{
	CapPackageIntake,
	CapPackageManagement,
	CapShipmentCreation,
	CapShipmentManagement,
	CapUserManagement,
	CapAnalyticsView,
	CapAnalyticsReport,
	CapReports,
	CapSystemSettings,
	CapAuditLogs,
}

// CapabilitySet is a set of granted capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the members of the set in table declaration order.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s))
	for _, c := range Capabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Identity represents the authenticated principal returned by an identity
// provider. Identities are never mutated in place; a changed identity
// produces a new session.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the identity may hold a session.
func (i Identity) Active() bool { return i.Status == StatusActive }

// Session is the live association between an authenticated identity and
// its derived capabilities. Capabilities are always recomputed from the
// role at derivation time and never persisted (a persisted capability set
// could otherwise outlive a role demotion).
type Session struct {
	Identity     Identity
	Capabilities CapabilitySet
	Token        string
	IssuedAt     time.Time
}

// Allows reports whether the session grants the capability.
func (s Session) Allows(c Capability) bool { return s.Capabilities.Has(c) }
