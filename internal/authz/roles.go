package authz

const (
	RoleReviewer = 10
	RoleAdmin    = 50
)

// CanReview: кто может одобрять/отклонять заказы.
func CanReview(roleID int) bool {
	return roleID == RoleReviewer || roleID == RoleAdmin
}

func RoleName(roleID int) string {
	switch roleID {
	case RoleReviewer:
		return "reviewer"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}
