package auth

// claims.go turns a verified JWT claim set into one of the four recognized
// credential shapes.  The shape is decided once, explicitly, instead of
// being inferred downstream from which optional claims happen to be set.

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectKind distinguishes the two kinds of principals that may hold a
// credential.  Owners sign up a restaurant; staff belong to one.
type SubjectKind string

const (
	SubjectOwner SubjectKind = "tenant-owner"
	SubjectStaff SubjectKind = "staff"
)

// ClaimShape tags the recognized credential layouts.  Precedence between
// them is fixed: owner-by-code wins over owner-by-id wins over staff.
type ClaimShape int

const (
	// ShapeUnrecognized is the explicit fallthrough: a syntactically valid
	// token whose claims match none of the known layouts.
	ShapeUnrecognized ClaimShape = iota
	// ShapeOwnerByCode carries role ADMIN plus a restaurant re-entry code;
	// the tenant id must be resolved by looking the code up.
	ShapeOwnerByCode
	// ShapeOwnerByID marks a tenant-owner credential whose subject id
	// doubles as the tenant id.
	ShapeOwnerByID
	// ShapeStaff carries a staff role and is expected to embed the tenant
	// id it is bound to.
	ShapeStaff
)

// Claims is the decoded, typed view of a verified token payload.  Fields
// that do not apply to the decoded shape are zero.
type Claims struct {
	Shape      ClaimShape
	SubjectID  uint64
	Kind       SubjectKind
	Role       Role
	TenantID   uint64 // embedded restaurant id, 0 when absent
	TenantCode string // human re-entry code, "" when absent
}

// Identity is the request-scoped result of authentication: who is calling,
// in which role, bound to which restaurant.  It lives only for the duration
// of one request and is never persisted.
type Identity struct {
	SubjectID uint64
	Kind      SubjectKind
	Role      Role
	TenantID  uint64
}

// DecodeClaims classifies a verified claim map into one of the four shapes.
// It never fails: anything unclassifiable comes back as ShapeUnrecognized
// so the caller can reject it as an explicit case rather than a panic or a
// silent default.
func DecodeClaims(mc jwt.MapClaims) Claims {
	c := Claims{
		SubjectID:  claimUint64(mc["sub"]),
		Kind:       SubjectKind(claimString(mc["kind"])),
		TenantID:   claimUint64(mc["restaurant_id"]),
		TenantCode: strings.TrimSpace(claimString(mc["restaurant_code"])),
	}
	role, hasRole := ParseRole(claimString(mc["role"]))
	if hasRole {
		c.Role = role
	}

	switch {
	case hasRole && role == RoleAdmin && c.TenantCode != "" && c.TenantID == 0:
		c.Shape = ShapeOwnerByCode
	case c.Kind == SubjectOwner:
		c.Shape = ShapeOwnerByID
		c.Role = RoleAdmin
	case hasRole && IsStaffRole(role):
		c.Shape = ShapeStaff
		c.Kind = SubjectStaff
	default:
		c.Shape = ShapeUnrecognized
	}
	return c
}

// claimString extracts a string claim, tolerating absence.
func claimString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// claimUint64 coerces a numeric claim to uint64.  JSON decoding hands
// numbers back as float64, but tokens issued by other stacks sometimes
// carry numeric ids as strings, so both are accepted.
func claimUint64(v interface{}) uint64 {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return uint64(t)
		}
	case int64:
		if t > 0 {
			return uint64(t)
		}
	case uint64:
		return t
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	}
	return 0
}
