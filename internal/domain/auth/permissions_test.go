package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveGrants(t *testing.T) {
	tests := []struct {
		role Role
		want []Capability
	}{
		{RoleWorker, []Capability{CapPackageIntake}},
		{RoleSpecialist, []Capability{CapPackageIntake, CapPackageManagement, CapShipmentCreation}},
		{RoleManager, []Capability{
			CapPackageIntake, CapPackageManagement, CapShipmentCreation,
			CapShipmentManagement, CapAnalyticsView, CapReports,
		}},
		{RoleAdmin, []Capability{
			CapPackageIntake, CapPackageManagement, CapShipmentCreation,
			CapShipmentManagement, CapUserManagement, CapAnalyticsView,
			CapAnalyticsReport, CapReports, CapAuditLogs,
		}},
		{RoleSuperAdmin, []Capability{
			CapPackageIntake, CapPackageManagement, CapShipmentCreation,
			CapShipmentManagement, CapUserManagement, CapAnalyticsView,
			CapAnalyticsReport, CapReports, CapSystemSettings, CapAuditLogs,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			set := Derive(tt.role)
			assert.ElementsMatch(t, tt.want, set.List())
		})
	}
}

func TestDeriveUnknownRoleFailsClosed(t *testing.T) {
	assert.Empty(t, Derive(Role("intruder")))
	assert.Empty(t, Derive(Role("")))
}

func TestDeriveReturnsFreshSet(t *testing.T) {
	first := Derive(RoleWorker)
	first[CapSystemSettings] = struct{}{}

	second := Derive(RoleWorker)
	assert.False(t, second.Has(CapSystemSettings), "mutating one derived set must not leak into the next")
	assert.True(t, second.Has(CapPackageIntake))
}

func TestAdminDoesNotHoldSystemSettings(t *testing.T) {
	admin := Derive(RoleAdmin)
	assert.False(t, admin.Has(CapSystemSettings))
	assert.True(t, Derive(RoleSuperAdmin).Has(CapSystemSettings))
}

func TestSuperAdminHoldsEveryCapability(t *testing.T) {
	super := Derive(RoleSuperAdmin)
	require.Len(t, super, len(Capabilities))
	for _, c := range Capabilities {
		assert.True(t, super.Has(c), "superadmin should hold %q", c)
	}
}
