package domain

// Permission names checked by the admin routes.
const (
	PermissionManageCoupons = "coupons.manage"
)

type Role struct {
	RoleID      string   `json:"id" dynamodbav:"role_id" gorm:"column:id;primaryKey;size:26"`
	Name        string   `json:"name" dynamodbav:"name" gorm:"uniqueIndex;not null"`
	Enable      bool     `json:"enable" dynamodbav:"enable" gorm:"not null"`
	Permissions []string `json:"permissions" dynamodbav:"permissions" gorm:"serializer:json"`
}

func (Role) TableName() string { return "roles" }

// Grants reports whether the role is enabled and lists the permission.
func (r *Role) Grants(permission string) bool {
	if !r.Enable {
		return false
	}
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
