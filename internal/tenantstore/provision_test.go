package tenantstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-order-gate/internal/utils"
)

// fakeSeedStore stands in for a restaurant schema's staff table so the
// full pipeline can run without a database.
type fakeSeedStore struct {
	accounts map[string]string // username -> role
	hashes   map[string]string // username -> password hash
	inserts  int
}

func newFakeSeedStore() *fakeSeedStore {
	return &fakeSeedStore{accounts: map[string]string{}, hashes: map[string]string{}}
}

func (f *fakeSeedStore) StaffExists(_ context.Context, username string) (bool, error) {
	_, ok := f.accounts[username]
	return ok, nil
}

func (f *fakeSeedStore) CreateStaff(_ context.Context, username, passwordHash, role string) (uint64, error) {
	f.inserts++
	f.accounts[username] = role
	f.hashes[username] = passwordHash
	return uint64(f.inserts), nil
}

// newFakeProvisioner substitutes the provisioner's database touches, the
// way registry tests substitute build.  Returned alongside is the list of
// DDL statements the pipeline issued.
func newFakeProvisioner(seed *fakeSeedStore) (*Provisioner, *[]string) {
	var ddl []string
	p := &Provisioner{bcryptCost: bcrypt.MinCost}
	p.exec = func(_ context.Context, stmt string) error {
		ddl = append(ddl, stmt)
		return nil
	}
	p.columnExists = func(_ context.Context, _, _, _ string) (bool, error) { return true, nil }
	p.seedStore = func(string) seedTarget { return seed }
	return p, &ddl
}

func TestRunSteps_NamesFailingStep(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	steps := []provisionStep{
		{"create_schema", func(ctx context.Context) error { ran = append(ran, "create_schema"); return nil }},
		{"sync_tables", func(ctx context.Context) error { ran = append(ran, "sync_tables"); return boom }},
		{"seed_staff", func(ctx context.Context) error { ran = append(ran, "seed_staff"); return nil }},
	}

	err := runSteps(context.Background(), steps)
	require.Error(t, err)

	var pe *ProvisionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "sync_tables", pe.Step)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"create_schema", "sync_tables"}, ran, "pipeline must stop at the failure")
}

func TestRunSteps_AllPass(t *testing.T) {
	steps := []provisionStep{
		{"one", func(ctx context.Context) error { return nil }},
		{"two", func(ctx context.Context) error { return nil }},
	}
	assert.NoError(t, runSteps(context.Background(), steps))
}

func TestInitializeTenant_RejectsInvalidSlug(t *testing.T) {
	p := NewProvisioner(nil, 10)
	err := p.InitializeTenant(context.Background(), "Pizza Roma")
	require.Error(t, err)

	var pe *ProvisionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "validate_slug", pe.Step)
}

func TestInitializeTenant_RepeatRunsAreIdempotent(t *testing.T) {
	seed := newFakeSeedStore()
	p, _ := newFakeProvisioner(seed)

	require.NoError(t, p.InitializeTenant(context.Background(), "acme"))
	require.NoError(t, p.InitializeTenant(context.Background(), "acme"), "second run must succeed")

	assert.Equal(t, 1, seed.inserts, "seeded account must not be duplicated")
	assert.Equal(t, "KITCHEN", seed.accounts[SeedStaffUsername])
}

func TestInitializeTenant_SeedsKitchenAccount(t *testing.T) {
	seed := newFakeSeedStore()
	p, ddl := newFakeProvisioner(seed)

	require.NoError(t, p.InitializeTenant(context.Background(), "acme"))

	assert.True(t, utils.VerifyPassword(seed.hashes[SeedStaffUsername], SeedStaffPassword),
		"stored hash must verify against the fixed initial password")

	// Every schema-shaping statement must tolerate an earlier run.
	require.NotEmpty(t, *ddl)
	for _, stmt := range *ddl {
		if strings.HasPrefix(stmt, "CREATE") {
			assert.Contains(t, stmt, "IF NOT EXISTS", "statement %q", stmt)
		}
	}
}

func TestInitializeTenant_SkipsSeedWhenAccountExists(t *testing.T) {
	seed := newFakeSeedStore()
	seed.accounts[SeedStaffUsername] = "KITCHEN"
	p, _ := newFakeProvisioner(seed)

	require.NoError(t, p.InitializeTenant(context.Background(), "acme"))
	assert.Zero(t, seed.inserts)
}

func TestTenantTables_ModelSet(t *testing.T) {
	for _, name := range []string{"menu_items", "orders", "tables", "staff_accounts", "ratings"} {
		assert.Contains(t, tenantTables, name)
	}
	assert.Len(t, tenantTables, 5)

	// Recreating a table must never be destructive.
	for name, ddl := range tenantTables {
		assert.False(t, strings.Contains(strings.ToUpper(ddl), "DROP"), "table %s", name)
	}
}

func TestProvisionError_Message(t *testing.T) {
	err := &ProvisionError{Step: "seed_staff", Err: errors.New("duplicate")}
	assert.Equal(t, "provision step seed_staff: duplicate", err.Error())
}
