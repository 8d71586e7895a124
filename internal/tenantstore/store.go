// Package tenantstore owns each restaurant's isolated MySQL schema: the
// registry that hands out per-restaurant data handles, the handles
// themselves, and the idempotent provisioner that creates and seeds a
// schema at signup.  Every query issued here is qualified with the
// restaurant's schema name, so a handle is structurally incapable of
// touching another restaurant's rows.
package tenantstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/restaurant-order-gate/internal/model"
)

// slugPattern is the shape of a valid restaurant slug.  It doubles as an
// injection guard: the slug is embedded in schema identifiers, so anything
// outside this alphabet is rejected before it reaches a DDL statement.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,47}$`)

// ValidSlug reports whether slug may name a restaurant schema.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// SchemaName derives the MySQL schema identifier for a slug.  Hyphens map
// to underscores; the result is stable, so reprovisioning and the registry
// always land on the same schema.
func SchemaName(slug string) string {
	return "restaurant_" + strings.ReplaceAll(slug, "-", "_")
}

// Store is the data-access handle for one restaurant's schema.  Handles
// are constructed once per slug by the Registry and shared by every
// request for that restaurant.
type Store struct {
	db     *sql.DB
	slug   string
	schema string
}

// Slug returns the restaurant slug this handle is bound to.
func (s *Store) Slug() string { return s.slug }

// Schema returns the MySQL schema this handle operates in.
func (s *Store) Schema() string { return s.schema }

// table qualifies a table name with the handle's schema.  All SQL in this
// file goes through it.
func (s *Store) table(name string) string {
	return fmt.Sprintf("`%s`.`%s`", s.schema, name)
}

// CreateStaff inserts a staff account and returns its ID.  The password
// arrives already hashed; the store never sees plaintext.
func (s *Store) CreateStaff(ctx context.Context, username, passwordHash, role string) (uint64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.table("staff_accounts")+" (username, password_hash, role) VALUES (?,?,?)",
		strings.ToLower(strings.TrimSpace(username)), passwordHash, role)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetStaffByUsername fetches an active staff account by login name.
func (s *Store) GetStaffByUsername(ctx context.Context, username string) (model.Staff, error) {
	var st model.Staff
	err := s.db.QueryRowContext(ctx,
		"SELECT id,username,password_hash,role,is_active,created_at,updated_at FROM "+
			s.table("staff_accounts")+" WHERE username=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(username))).
		Scan(&st.ID, &st.Username, &st.PasswordHash, &st.Role, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

// StaffExists reports whether a staff account with the username exists.
// The provisioner consults it before seeding so reruns never duplicate the
// default account.
func (s *Store) StaffExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+s.table("staff_accounts")+" WHERE username=?",
		strings.ToLower(strings.TrimSpace(username))).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateOrder inserts a customer order and returns its ID.
func (s *Store) CreateOrder(ctx context.Context, tableCode, customerName, instructions string) (uint64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.table("orders")+" (table_code, customer_name, special_instructions, status) VALUES (?,?,?,'OPEN')",
		tableCode, customerName, instructions)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListOpenOrders returns the restaurant's orders that are not yet settled,
// oldest first.
func (s *Store) ListOpenOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id,table_code,customer_name,special_instructions,status,created_at,updated_at FROM "+
			s.table("orders")+" WHERE status<>'SETTLED' ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.TableCode, &o.CustomerName, &o.SpecialInstructions, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
