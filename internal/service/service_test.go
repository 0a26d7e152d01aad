package service

import (
	"testing"

	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Project{},
		&model.ProjectMember{},
		&model.Supplier{},
		&model.InventoryItem{},
		&model.InventoryMovement{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
	))
	return db
}

// testEnv wires the full service stack against an in-memory database with
// one project and a user per role.
type testEnv struct {
	db *gorm.DB

	tenancy   TenancyService
	ledger    LedgerService
	orders    PurchaseOrderService
	suppliers SupplierService
	reorder   ReorderService
	query     QueryService

	project *model.Project

	owner    uuid.UUID
	admin    uuid.UUID
	user     uuid.UUID
	viewer   uuid.UUID
	stranger uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	projectRepo := repository.NewProjectRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	orderRepo := repository.NewPurchaseOrderRepo(db)

	tenancy := NewTenancyService(projectRepo)
	ledger := NewLedgerService(tenancy, inventoryRepo, db, nil)

	env := &testEnv{
		db:        db,
		tenancy:   tenancy,
		ledger:    ledger,
		orders:    NewPurchaseOrderService(tenancy, ledger, orderRepo, supplierRepo, inventoryRepo, db, nil),
		suppliers: NewSupplierService(tenancy, supplierRepo, orderRepo),
		reorder:   NewReorderService(tenancy, inventoryRepo),
		query:     NewQueryService(tenancy, inventoryRepo, orderRepo),
		owner:     uuid.New(),
		admin:     uuid.New(),
		user:      uuid.New(),
		viewer:    uuid.New(),
		stranger:  uuid.New(),
	}

	project, err := tenancy.CreateProject(env.owner, &CreateProjectRequest{
		Name: "Roastery Back Office",
		Slug: "roastery",
	})
	require.NoError(t, err)
	env.project = project

	for _, m := range []struct {
		id   uuid.UUID
		role model.Role
	}{
		{env.admin, model.RoleAdmin},
		{env.user, model.RoleUser},
		{env.viewer, model.RoleViewer},
	} {
		_, err := tenancy.AddMember(env.owner, project.ID, &MemberRequest{UserID: m.id, Role: m.role})
		require.NoError(t, err)
	}

	return env
}

func (e *testEnv) createItem(t *testing.T, req *CreateItemRequest) *model.InventoryItem {
	t.Helper()
	item, err := e.ledger.CreateItem(e.owner, e.project.ID, req)
	require.NoError(t, err)
	return item
}

func (e *testEnv) createSupplier(t *testing.T, name string) *model.Supplier {
	t.Helper()
	supplier, err := e.suppliers.CreateSupplier(e.owner, e.project.ID, &SupplierRequest{Name: name})
	require.NoError(t, err)
	return supplier
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
