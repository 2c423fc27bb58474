package model

type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Manages catalog, suppliers and every ledger operation",
	},
	{
		Code:        RoleStaff,
		Name:        "Warehouse Staff",
		Description: "Views the catalog and records sales",
	},
}

// StaffPrivileges is the subset of DefaultPrivileges granted to STAFF.
var StaffPrivileges = []string{
	PrivProductView,
	PrivTransactionView,
	PrivTransactionSell,
	PrivDashboardView,
}
