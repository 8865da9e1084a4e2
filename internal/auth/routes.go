package auth

import (
	"github.com/pati-platform/pati-backend/pkg/enums"
)

// homeRouteByRole maps each role to the client route the UI lands on after
// authentication. Unknown roles fall back to the storefront.
var homeRouteByRole = map[enums.UserRole]string{
	enums.UserRoleOwner:     "/admin",
	enums.UserRoleAdmin:     "/admin",
	enums.UserRoleClerk:     "/pos",
	enums.UserRoleAffiliate: "/affiliate",
	enums.UserRoleCustomer:  "/store",
}

const defaultHomeRoute = "/store"

// HomeRouteFor resolves the post-login route for a role.
func HomeRouteFor(role enums.UserRole) string {
	if route, ok := homeRouteByRole[role]; ok {
		return route
	}
	return defaultHomeRoute
}
