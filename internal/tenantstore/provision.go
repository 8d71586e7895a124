package tenantstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/iliyamo/restaurant-order-gate/internal/utils"
)

// SeedStaffUsername and SeedStaffPassword are the credentials of the one
// staff account every fresh restaurant schema starts with.  The password
// is a fixed initial value the restaurant is expected to rotate on first
// login; only its bcrypt hash is ever stored.
const (
	SeedStaffUsername = "kitchen"
	SeedStaffPassword = "kitchen-initial-1"
	seedStaffRole     = "KITCHEN"
)

// ProvisionError reports which provisioning step failed.  Steps are
// independently retryable, so the caller may simply invoke
// InitializeTenant again for the same slug.
type ProvisionError struct {
	Step string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision step %s: %v", e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// provisionStep is one named unit of the provisioning pipeline.
type provisionStep struct {
	name string
	fn   func(ctx context.Context) error
}

// seedTarget is the slice of Store the seeding step needs.
type seedTarget interface {
	StaffExists(ctx context.Context, username string) (bool, error)
	CreateStaff(ctx context.Context, username, passwordHash, role string) (uint64, error)
}

// Provisioner creates and initializes restaurant schemas.  Every step is
// idempotent: schema and table creation are IF NOT EXISTS, column drift is
// repaired additively, and seeding checks for the account before insert.
// Nothing here can drop or truncate existing restaurant data.
type Provisioner struct {
	bcryptCost int

	// The database touches are fields rather than direct calls so tests
	// can substitute them, like Registry.build.
	exec         func(ctx context.Context, stmt string) error
	columnExists func(ctx context.Context, schema, table, column string) (bool, error)
	seedStore    func(slug string) seedTarget
}

// NewProvisioner returns a provisioner using the shared connection pool.
func NewProvisioner(db *sql.DB, bcryptCost int) *Provisioner {
	p := &Provisioner{bcryptCost: bcryptCost}
	p.exec = func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
	p.columnExists = func(ctx context.Context, schema, table, column string) (bool, error) {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM information_schema.COLUMNS
         WHERE TABLE_SCHEMA=? AND TABLE_NAME=? AND COLUMN_NAME=?`,
			schema, table, column).Scan(&n)
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
	p.seedStore = func(slug string) seedTarget {
		return &Store{db: db, slug: slug, schema: SchemaName(slug)}
	}
	return p
}

// InitializeTenant creates the restaurant's schema, synchronizes its table
// set and seeds the default kitchen account.  Invoked out-of-band by the
// signup flow, never per request.  Safe to call repeatedly for the same
// slug; a failure names the step so the caller can log and retry.
func (p *Provisioner) InitializeTenant(ctx context.Context, slug string) error {
	if !ValidSlug(slug) {
		return &ProvisionError{Step: "validate_slug", Err: fmt.Errorf("invalid slug %q", slug)}
	}
	schema := SchemaName(slug)

	steps := []provisionStep{
		{"create_schema", func(ctx context.Context) error { return p.createSchema(ctx, schema) }},
		{"sync_tables", func(ctx context.Context) error { return p.syncTables(ctx, schema) }},
		{"seed_staff", func(ctx context.Context) error { return p.seedStaff(ctx, slug) }},
	}
	if err := runSteps(ctx, steps); err != nil {
		return err
	}
	log.Printf("provision: schema %s ready", schema)
	return nil
}

// runSteps executes the pipeline in order, wrapping the first failure with
// its step name.
func runSteps(ctx context.Context, steps []provisionStep) error {
	for _, st := range steps {
		if err := st.fn(ctx); err != nil {
			return &ProvisionError{Step: st.name, Err: err}
		}
	}
	return nil
}

func (p *Provisioner) createSchema(ctx context.Context, schema string) error {
	return p.exec(ctx,
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", schema))
}

// tenantTables is the model set every restaurant schema carries.  DDL is
// create-if-absent; columns added to the model after release are repaired
// by ensureColumn below rather than by destructive recreation.
var tenantTables = map[string]string{
	"menu_items": `(
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(120) NOT NULL,
        category VARCHAR(60) NOT NULL DEFAULT '',
        price_cents INT UNSIGNED NOT NULL DEFAULT 0,
        is_available TINYINT(1) NOT NULL DEFAULT 1,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    )`,
	"orders": `(
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        table_code VARCHAR(32) NOT NULL,
        customer_name VARCHAR(100) NOT NULL DEFAULT '',
        status VARCHAR(16) NOT NULL DEFAULT 'OPEN',
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        KEY idx_orders_status (status)
    )`,
	"tables": `(
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        table_code VARCHAR(32) NOT NULL,
        seats INT UNSIGNED NOT NULL DEFAULT 2,
        is_active TINYINT(1) NOT NULL DEFAULT 1,
        UNIQUE KEY uq_tables_code (table_code)
    )`,
	"staff_accounts": `(
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        username VARCHAR(64) NOT NULL,
        password_hash VARCHAR(100) NOT NULL,
        role VARCHAR(16) NOT NULL,
        is_active TINYINT(1) NOT NULL DEFAULT 1,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        UNIQUE KEY uq_staff_username (username)
    )`,
	"ratings": `(
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        order_id BIGINT UNSIGNED NOT NULL,
        stars TINYINT UNSIGNED NOT NULL,
        comment VARCHAR(500) NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
}

func (p *Provisioner) syncTables(ctx context.Context, schema string) error {
	for name, ddl := range tenantTables {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s`.`%s` %s ENGINE=InnoDB", schema, name, ddl)
		if err := p.exec(ctx, stmt); err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
	}
	// Schemas provisioned before customer notes shipped lack this column;
	// repair additively instead of recreating the table.
	if err := p.ensureColumn(ctx, schema, "orders", "special_instructions",
		"VARCHAR(500) NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("table orders: %w", err)
	}
	return nil
}

// ensureColumn adds a column if the live table is missing it.
func (p *Provisioner) ensureColumn(ctx context.Context, schema, table, column, definition string) error {
	ok, err := p.columnExists(ctx, schema, table, column)
	if err != nil || ok {
		return err
	}
	return p.exec(ctx,
		fmt.Sprintf("ALTER TABLE `%s`.`%s` ADD COLUMN %s %s", schema, table, column, definition))
}

// seedStaff creates the default kitchen account unless an account with the
// seed username already exists, which keeps reprovisioning from ever
// duplicating it.
func (p *Provisioner) seedStaff(ctx context.Context, slug string) error {
	store := p.seedStore(slug)
	exists, err := store.StaffExists(ctx, SeedStaffUsername)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	hash, err := utils.HashPassword(SeedStaffPassword, p.bcryptCost)
	if err != nil {
		return err
	}
	_, err = store.CreateStaff(ctx, SeedStaffUsername, hash, seedStaffRole)
	return err
}
