package rbac

const (
	RoleGuard      = "guard"
	RoleSupervisor = "supervisor"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
)

type RolePermissionRow struct {
	Role     string `gorm:"column:role"`
	Resource string `gorm:"column:resource"`
	Action   string `gorm:"column:action"`
}

// RoleParentRow grants Role every permission of Parent.
type RoleParentRow struct {
	Role   string `gorm:"column:role"`
	Parent string `gorm:"column:parent"`
}

type CheckRequest struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// DefaultPermissions is seeded by the migrations and used when the policy tables are empty.
var DefaultPermissions = []RolePermissionRow{
	{Role: RoleGuard, Resource: "site_attendance", Action: "scan"},
	{Role: RoleGuard, Resource: "site_attendance", Action: "resolve"},
	{Role: RoleGuard, Resource: "site_attendance", Action: "read_own"},
	{Role: RoleSupervisor, Resource: "site_attendance", Action: "read_all"},
	{Role: RoleSupervisor, Resource: "site_attendance", Action: "resolve_any"},
	{Role: RoleSupervisor, Resource: "site_attendance", Action: "monitor"},
	{Role: RoleManager, Resource: "site", Action: "qr"},
}

var DefaultRoleParents = []RoleParentRow{
	{Role: RoleSupervisor, Parent: RoleGuard},
	{Role: RoleManager, Parent: RoleSupervisor},
	{Role: RoleAdmin, Parent: RoleManager},
}
