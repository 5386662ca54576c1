package rbac

type RolePermissionRow struct {
	Role     string `gorm:"column:role"`
	Resource string `gorm:"column:resource"`
	Action   string `gorm:"column:action"`
}

// RoleInheritanceRow lets one role carry every permission of another.
type RoleInheritanceRow struct {
	Role       string `gorm:"column:role"`
	ParentRole string `gorm:"column:parent_role"`
}
