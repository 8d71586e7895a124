package model

import "time"

// Tenant represents one restaurant registered with the platform, as stored
// in the control-plane `restaurants` table.  Each restaurant additionally
// owns an isolated MySQL schema holding its menu, orders, tables, staff
// accounts and ratings; nothing in that schema is reachable except through
// a data handle bound to this record.
//
// Fields:
//  ID           – primary key identifier; owner credentials reuse it as the subject id.
//  Slug         – unique URL-safe identifier used in routes and headers.
//  HumanCode    – unique short code handed to the owner for admin re-entry.
//  DisplayName  – name shown to customers.
//  PasswordHash – bcrypt hash of the owner's password.
//  IsActive     – whether the restaurant accepts requests.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Tenant struct {
	ID           uint64    // restaurants.id
	Slug         string    // restaurants.slug
	HumanCode    string    // restaurants.human_code
	DisplayName  string    // restaurants.display_name
	PasswordHash string    // restaurants.password_hash
	IsActive     bool      // restaurants.is_active
	CreatedAt    time.Time // restaurants.created_at
	UpdatedAt    time.Time // restaurants.updated_at
}
