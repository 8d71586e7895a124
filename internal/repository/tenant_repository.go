package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-order-gate/internal/model"
	"github.com/iliyamo/restaurant-order-gate/internal/utils"
)

// TenantRepo reads and writes the control-plane 'restaurants' table.  The
// per-restaurant schemas are not its concern; see the tenantstore package.
type TenantRepo struct{ DB *sql.DB }

func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{DB: db} }

const tenantColumns = "id,slug,human_code,display_name,password_hash,is_active,created_at,updated_at"

// EnsureTable creates the control-plane registry table if it does not
// exist yet.  Both slug and human_code carry unique indexes; they are the
// two lookup keys the gate resolves restaurants by.
func (r *TenantRepo) EnsureTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS restaurants (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        slug VARCHAR(64) NOT NULL,
        human_code VARCHAR(16) NOT NULL,
        display_name VARCHAR(120) NOT NULL,
        password_hash VARCHAR(100) NOT NULL,
        is_active TINYINT(1) NOT NULL DEFAULT 1,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        UNIQUE KEY uq_restaurants_slug (slug),
        UNIQUE KEY uq_restaurants_human_code (human_code)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}

// Create inserts a restaurant and returns its ID.  The slug is normalized
// to lower case; MySQL duplicate-key failures (error 1062) are mapped onto
// the sentinel for whichever unique key collided.
func (r *TenantRepo) Create(ctx context.Context, slug, humanCode, displayName, password string, cost int) (uint64, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurants (slug, human_code, display_name, password_hash) VALUES (?,?,?,?)",
		slug, humanCode, displayName, hash)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "human_code") {
				return 0, ErrCodeExists
			}
			return 0, ErrSlugExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetBySlug fetches a restaurant by its normalized slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (model.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return r.getWhere(ctx, "slug=?", slug)
}

// GetByHumanCode fetches a restaurant by its admin re-entry code.
func (r *TenantRepo) GetByHumanCode(ctx context.Context, code string) (model.Tenant, error) {
	return r.getWhere(ctx, "human_code=?", strings.TrimSpace(code))
}

// GetByID fetches a restaurant by id.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (model.Tenant, error) {
	return r.getWhere(ctx, "id=?", id)
}

func (r *TenantRepo) getWhere(ctx context.Context, cond string, arg interface{}) (model.Tenant, error) {
	var t model.Tenant
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM restaurants WHERE "+cond+" LIMIT 1", arg).
		Scan(&t.ID, &t.Slug, &t.HumanCode, &t.DisplayName, &t.PasswordHash, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
