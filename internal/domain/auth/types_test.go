package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleKnown(t *testing.T) {
	for _, role := range Roles {
		assert.True(t, role.Known(), "role %q should be known", role)
	}

	assert.False(t, Role("").Known())
	assert.False(t, Role("root").Known())
	assert.False(t, Role("Worker").Known(), "role tags are case sensitive")
}

func TestStatusKnown(t *testing.T) {
	assert.True(t, StatusActive.Known())
	assert.True(t, StatusSuspended.Known())
	assert.True(t, StatusReported.Known())

	assert.False(t, Status("").Known())
	assert.False(t, Status("banned").Known())
}

func TestCapabilitySetHas(t *testing.T) {
	set := CapabilitySet{
		CapPackageIntake:    {},
		CapShipmentCreation: {},
	}

	assert.True(t, set.Has(CapPackageIntake))
	assert.True(t, set.Has(CapShipmentCreation))
	assert.False(t, set.Has(CapUserManagement))

	var empty CapabilitySet
	assert.False(t, empty.Has(CapPackageIntake), "nil set grants nothing")
}

func TestCapabilitySetListOrder(t *testing.T) {
	set := CapabilitySet{
		CapAuditLogs:     {},
		CapPackageIntake: {},
		CapReports:       {},
	}

	// List follows declaration order regardless of map iteration order.
	assert.Equal(t, []Capability{CapPackageIntake, CapReports, CapAuditLogs}, set.List())
	assert.Empty(t, CapabilitySet{}.List())
}

func TestIdentityActive(t *testing.T) {
	identity := Identity{ID: "op-1", Status: StatusActive}
	assert.True(t, identity.Active())

	identity.Status = StatusSuspended
	assert.False(t, identity.Active())

	identity.Status = StatusReported
	assert.False(t, identity.Active())

	identity.Status = Status("unknown")
	assert.False(t, identity.Active())
}

func TestSessionAllows(t *testing.T) {
	sess := Session{
		Identity:     Identity{ID: "op-1", Role: RoleManager, Status: StatusActive},
		Capabilities: Derive(RoleManager),
		Token:        "tok",
		IssuedAt:     time.Now(),
	}

	assert.True(t, sess.Allows(CapShipmentManagement))
	assert.False(t, sess.Allows(CapUserManagement))

	var empty Session
	assert.False(t, empty.Allows(CapPackageIntake))
}
