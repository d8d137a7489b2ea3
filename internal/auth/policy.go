package auth

// Decision is the outcome of an access policy check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// RouteClass classifies a route's access requirement.
type RouteClass struct {
	requiresAuth bool
	role         string
}

// Public routes are reachable by anyone.
var Public = RouteClass{}

// RequiresAuth routes need any authenticated identity.
var RequiresAuth = RouteClass{requiresAuth: true}

// RequiresRole routes need an authenticated identity with the given role.
func RequiresRole(role string) RouteClass {
	return RouteClass{requiresAuth: true, role: role}
}

// Decide applies the access policy for a route class against the caller's
// identity (nil when unauthenticated). Pure decision logic, no I/O.
func Decide(class RouteClass, ident *Identity) Decision {
	if !class.requiresAuth {
		return Allow
	}
	if ident == nil {
		return DenyUnauthenticated
	}
	if class.role != "" && ident.Role != class.role {
		return DenyForbidden
	}
	return Allow
}

// DecideOwnership is the per-resource check layered after a passing role
// check: the caller must own the resource, with an admin override.
func DecideOwnership(ident Identity, ownerID string) Decision {
	if ident.ID == ownerID || ident.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}
