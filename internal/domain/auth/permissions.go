package auth

// permissionTable enumerates the capabilities granted to each role.
// Every role's grant list is declared in full so that widening one role
// can never silently widen another. Restricted roles are intentionally
// NOT subsets-by-construction of wider ones.
var permissionTable = map[Role][]Capability{
	RoleWorker: {
		CapPackageIntake,
	},
	RoleSpecialist: {
		CapPackageIntake,
		CapPackageManagement,
		CapShipmentCreation,
	},
	RoleManager: {
		CapPackageIntake,
		CapPackageManagement,
		CapShipmentCreation,
		CapShipmentManagement,
		CapAnalyticsView,
		CapReports,
	},
	RoleAdmin: {
		CapPackageIntake,
		CapPackageManagement,
		CapShipmentCreation,
		CapShipmentManagement,
		CapUserManagement,
		CapAnalyticsView,
		CapAnalyticsReport,
		CapReports,
		CapAuditLogs,
	},
	RoleSuperAdmin: {
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
	},
}

// Derive returns the capability set granted to the role. It is pure and
// total: every call returns a fresh set, and an unrecognized role yields
// the empty set rather than an error, so unknown roles fail closed.
func Derive(role Role) CapabilitySet {
	caps := permissionTable[role]
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}
