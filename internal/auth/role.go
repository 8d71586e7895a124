// Package auth defines the closed role and permission vocabulary of the
// application together with the static matrix that maps one to the other.
// The matrix is pure data: no I/O, no runtime grants or revocations.
// Changing what a role may do means changing this file.
package auth

import "strings"

// Role is the closed set of staff roles recognized by the gate.  Role
// values appear verbatim in the JWT "role" claim and in the
// staff_accounts.role column of every restaurant schema.
type Role string

const (
	RoleAdmin     Role = "ADMIN"     // restaurant owner / administrator
	RoleCaptain   Role = "CAPTAIN"   // floor captain, manages tables and orders
	RoleKitchen   Role = "KITCHEN"   // kitchen staff, works the order queue
	RoleReception Role = "RECEPTION" // front desk, manages tables
	RoleCashier   Role = "CASHIER"   // settles orders
	RoleViewer    Role = "VIEWER"    // read-only access
)

// Permission is an "action:resource" token.  The two wildcard values
// short-circuit every read or write check for a role that holds them.
type Permission string

const (
	PermReadAll  Permission = "read:all"
	PermWriteAll Permission = "write:all"

	PermReadOrders   Permission = "read:orders"
	PermWriteOrders  Permission = "write:orders"
	PermReadMenu     Permission = "read:menu"
	PermWriteMenu    Permission = "write:menu"
	PermReadTables   Permission = "read:tables"
	PermWriteTables  Permission = "write:tables"
	PermReadStaff    Permission = "read:staff"
	PermWriteStaff   Permission = "write:staff"
	PermReadRatings  Permission = "read:ratings"
	PermWriteRatings Permission = "write:ratings"
)

// matrix assigns every role its fixed, ordered permission set.  Every Role
// constant above must have an entry here; a test enforces completeness.
// Lookups for roles outside the matrix yield the empty set, so an unknown
// role can never be mistaken for an allowed one.
var matrix = map[Role][]Permission{
	RoleAdmin:     {PermReadAll, PermWriteAll},
	RoleCaptain:   {PermReadOrders, PermWriteOrders, PermReadTables, PermWriteTables, PermReadMenu},
	RoleKitchen:   {PermReadOrders, PermWriteOrders, PermReadMenu},
	RoleReception: {PermReadTables, PermWriteTables, PermReadOrders},
	RoleCashier:   {PermReadOrders, PermWriteOrders, PermReadRatings},
	RoleViewer:    {PermReadAll},
}

// AllRoles lists every role in the matrix, in a stable order.  Used by the
// claim decoder to recognize staff roles and by tests to check matrix
// completeness.
var AllRoles = []Role{RoleAdmin, RoleCaptain, RoleKitchen, RoleReception, RoleCashier, RoleViewer}

// StaffRoles are the roles a staff credential may carry.  ADMIN is issued
// through the owner paths, never through a staff token.
var StaffRoles = []Role{RoleCaptain, RoleKitchen, RoleReception, RoleCashier, RoleViewer}

// ParseRole maps a raw claim string onto a known Role.  The boolean is
// false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := matrix[r]; ok {
		return r, true
	}
	return "", false
}

// IsStaffRole reports whether r is one of the non-owner staff roles.
func IsStaffRole(r Role) bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

// Permissions returns the configured permission set for a role.  Unknown
// roles get nil, which every caller treats as deny.
func Permissions(r Role) []Permission {
	return matrix[r]
}

// HasPermission reports whether role may perform perm.  The check is total:
// any role not in the matrix simply has no permissions.  A wildcard in the
// role's set grants every permission sharing its action prefix, so ADMIN
// (read:all, write:all) passes every check without enumerating resources.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range matrix[role] {
		if p == perm {
			return true
		}
		if p == PermReadAll && strings.HasPrefix(string(perm), "read:") {
			return true
		}
		if p == PermWriteAll && strings.HasPrefix(string(perm), "write:") {
			return true
		}
	}
	return false
}
