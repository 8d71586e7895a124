package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/restaurant-order-gate/internal/auth"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and sent in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewOwnerToken signs a credential for a restaurant owner whose subject id
// doubles as the restaurant id.  The "kind" claim marks the owner-by-id
// shape; no role claim is needed because decoding forces ADMIN.
func NewOwnerToken(secret string, tenantID uint64, ttlMin int) (AccessToken, error) {
	return sign(secret, jwt.MapClaims{
		"sub":  tenantID,
		"kind": string(auth.SubjectOwner),
	}, ttlMin)
}

// NewOwnerCodeToken signs a re-entry credential carrying the restaurant's
// human code instead of its id.  The gate resolves the code to the
// restaurant on every request, so the credential survives restaurant id
// migrations.
func NewOwnerCodeToken(secret string, subjectID uint64, humanCode string, ttlMin int) (AccessToken, error) {
	return sign(secret, jwt.MapClaims{
		"sub":             subjectID,
		"role":            string(auth.RoleAdmin),
		"restaurant_code": humanCode,
	}, ttlMin)
}

// NewStaffToken signs a staff credential bound to one restaurant.  The
// embedded restaurant id is mandatory at verification time; a staff token
// without it is rejected, never defaulted.
func NewStaffToken(secret string, staffID uint64, role auth.Role, tenantID uint64, ttlMin int) (AccessToken, error) {
	return sign(secret, jwt.MapClaims{
		"sub":           staffID,
		"role":          string(role),
		"restaurant_id": tenantID,
	}, ttlMin)
}

// sign stamps the shared claims (exp, iat) onto the shape-specific ones
// and signs with HS256, the only algorithm the verifier accepts.
func sign(secret string, claims jwt.MapClaims, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims["exp"] = exp.Unix()
	claims["iat"] = now.Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
