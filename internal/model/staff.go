package model

import "time"

// Staff represents a row in a restaurant schema's `staff_accounts` table.
// Staff accounts exist only inside their restaurant's schema; the tenant
// binding is structural, not a column.
//
// Fields:
//  ID           – primary key identifier within the restaurant schema.
//  Username     – unique login name within the restaurant.
//  PasswordHash – bcrypt hashed password.
//  Role         – staff role name (CAPTAIN, KITCHEN, RECEPTION, CASHIER, VIEWER).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Staff struct {
	ID           uint64    // staff_accounts.id
	Username     string    // staff_accounts.username
	PasswordHash string    // staff_accounts.password_hash
	Role         string    // staff_accounts.role
	IsActive     bool      // staff_accounts.is_active
	CreatedAt    time.Time // staff_accounts.created_at
	UpdatedAt    time.Time // staff_accounts.updated_at
}
