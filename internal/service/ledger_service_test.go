package service

import (
	"testing"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)

	env.createItem(t, &CreateItemRequest{SKU: "BRU-RG-001", Name: "Roasted Guatemala"})

	_, err := env.ledger.CreateItem(env.owner, env.project.ID, &CreateItemRequest{
		SKU:  "BRU-RG-001",
		Name: "Duplicate",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// The same SKU in another project is fine
	other, err := env.tenancy.CreateProject(env.owner, &CreateProjectRequest{Name: "Other", Slug: "other"})
	require.NoError(t, err)
	_, err = env.ledger.CreateItem(env.owner, other.ID, &CreateItemRequest{SKU: "BRU-RG-001", Name: "Same SKU elsewhere"})
	assert.NoError(t, err)
}

func TestCreateItemOpeningStockIsLedgered(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{
		SKU:             "BRU-RG-001",
		Name:            "Roasted Guatemala",
		InitialQuantity: 25,
		UnitCost:        1200,
	})
	assert.Equal(t, 25, item.QuantityAvailable)

	movements, err := env.ledger.ListMovements(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementIn, movements[0].Type)
	assert.Equal(t, model.ReferenceInitialStock, movements[0].ReferenceType)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestOutboundInsufficientStock(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{
		SKU:             "BRU-RG-001",
		Name:            "Roasted Guatemala",
		InitialQuantity: 25,
		ReorderLevel:    intPtr(5),
	})

	updated, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 22,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.QuantityAvailable)
	assert.True(t, updated.LowStock())

	// Overdraw fails with no state change
	_, err = env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 5,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	current, err := env.ledger.GetItem(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.QuantityAvailable)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, current.QuantityAvailable, balance)
}

func TestOutboundWithBackorder(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{
		SKU:             "PRE-ORDER-01",
		Name:            "Preorder blend",
		InitialQuantity: 2,
		AllowBackorder:  true,
	})

	updated, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:     model.MovementOut,
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, -3, updated.QuantityAvailable)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, balance)
}

func TestAdjustmentSetsTarget(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{SKU: "ADJ-01", Name: "Counted", InitialQuantity: 10})

	// Downward correction after a physical count
	updated, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:           model.MovementAdjustment,
		TargetQuantity: intPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.QuantityAvailable)

	movements, err := env.ledger.ListMovements(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	last := movements[len(movements)-1]
	assert.Equal(t, 3, last.Quantity) // magnitude
	assert.Equal(t, -3, last.QuantityDelta)

	// No-op adjustments are rejected
	_, err = env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:           model.MovementAdjustment,
		TargetQuantity: intPtr(7),
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Missing target is rejected
	_, err = env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementAdjustment,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, balance)
}

func TestTransferKeepsBalance(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{
		SKU: "TRF-01", Name: "Pallet", Location: "warehouse-a", InitialQuantity: 12,
	})

	updated, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type:        model.MovementTransfer,
		Quantity:    12,
		NewLocation: "warehouse-b",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.QuantityAvailable)
	assert.Equal(t, "warehouse-b", updated.Location)

	movements, err := env.ledger.ListMovements(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	last := movements[len(movements)-1]
	assert.Equal(t, "warehouse-a", last.FromLocation)
	assert.Equal(t, "warehouse-b", last.ToLocation)
	assert.Equal(t, 0, last.QuantityDelta)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, balance)
}

func TestReconstructionAfterMovementSequence(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{SKU: "SEQ-01", Name: "Sequenced", InitialQuantity: 5})

	steps := []*MovementRequest{
		{Type: model.MovementIn, Quantity: 40, UnitCost: int64Ptr(900)},
		{Type: model.MovementOut, Quantity: 18},
		{Type: model.MovementAdjustment, TargetQuantity: intPtr(30)},
		{Type: model.MovementTransfer, Quantity: 30, NewLocation: "bin-7"},
		{Type: model.MovementOut, Quantity: 11},
	}
	for _, step := range steps {
		_, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, step)
		require.NoError(t, err)
	}

	current, err := env.ledger.GetItem(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 19, current.QuantityAvailable)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, current.QuantityAvailable, balance)
}

func TestInboundCostTracking(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{SKU: "COST-01", Name: "Costed"})

	_, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementIn, Quantity: 10, UnitCost: int64Ptr(100),
	})
	require.NoError(t, err)

	updated, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementIn, Quantity: 10, UnitCost: int64Ptr(200),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(200), updated.LastCost)
	assert.Equal(t, int64(150), updated.AverageCost) // (10*100 + 10*200) / 20

	movements, err := env.ledger.ListMovements(env.owner, env.project.ID, item.ID)
	require.NoError(t, err)
	last := movements[len(movements)-1]
	assert.Equal(t, int64(2000), last.TotalCost)
}

func TestDeleteItemOnlyWithoutMovements(t *testing.T) {
	env := newTestEnv(t)

	moved := env.createItem(t, &CreateItemRequest{SKU: "DEL-01", Name: "Has history", InitialQuantity: 1})
	err := env.ledger.DeleteItem(env.owner, env.project.ID, moved.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	fresh := env.createItem(t, &CreateItemRequest{SKU: "DEL-02", Name: "No history"})
	require.NoError(t, env.ledger.DeleteItem(env.owner, env.project.ID, fresh.ID))

	_, err = env.ledger.GetItem(env.owner, env.project.ID, fresh.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeletedItemSKUCanBeReused(t *testing.T) {
	env := newTestEnv(t)

	first := env.createItem(t, &CreateItemRequest{SKU: "REISSUE-01", Name: "First run"})
	require.NoError(t, env.ledger.DeleteItem(env.owner, env.project.ID, first.ID))

	// The deleted row must not keep holding the SKU's unique slot
	second, err := env.ledger.CreateItem(env.owner, env.project.ID, &CreateItemRequest{
		SKU:  "REISSUE-01",
		Name: "Second run",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLedgerAuthorization(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{SKU: "AUTH-01", Name: "Guarded", InitialQuantity: 5})

	// Viewer may read but not move stock
	_, err := env.ledger.GetItem(env.viewer, env.project.ID, item.ID)
	assert.NoError(t, err)
	_, err = env.ledger.PostMovement(env.viewer, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementIn, Quantity: 1,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// A stranger gets nothing, reads included
	_, err = env.ledger.ListItems(env.stranger, env.project.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// Cross-project access resolves to not found, never the other tenant's row
	other, err := env.tenancy.CreateProject(env.stranger, &CreateProjectRequest{Name: "Foreign", Slug: "foreign"})
	require.NoError(t, err)
	_, err = env.ledger.GetItem(env.stranger, other.ID, item.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
