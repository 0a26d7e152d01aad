package service

import (
	"testing"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"
	"go-backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderFixture sets up a supplier and two inventory items with a draft order
// of A×10 and B×5.
type orderFixture struct {
	supplier *model.Supplier
	itemA    *model.InventoryItem
	itemB    *model.InventoryItem
	order    *model.PurchaseOrder
}

func newOrderFixture(t *testing.T, env *testEnv) *orderFixture {
	t.Helper()
	f := &orderFixture{
		supplier: env.createSupplier(t, "Highland Beans Co"),
		itemA:    env.createItem(t, &CreateItemRequest{SKU: "ORD-A", Name: "Item A"}),
		itemB:    env.createItem(t, &CreateItemRequest{SKU: "ORD-B", Name: "Item B"}),
	}

	order, err := env.orders.CreateOrder(env.owner, env.project.ID, &CreateOrderRequest{
		SupplierID: f.supplier.ID,
		Items: []OrderItemRequest{
			{ItemID: f.itemA.ID, QuantityOrdered: 10, UnitCost: 500},
			{ItemID: f.itemB.ID, QuantityOrdered: 5, UnitCost: 300},
		},
	})
	require.NoError(t, err)
	f.order = order
	return f
}

func (f *orderFixture) place(t *testing.T, env *testEnv) {
	t.Helper()
	_, err := env.orders.SubmitOrder(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)
	_, err = env.orders.MarkOrdered(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)
}

func TestCreateOrderDerivesTotal(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)

	assert.Equal(t, model.OrderDraft, f.order.Status)
	assert.Equal(t, int64(10*500+5*300), f.order.TotalAmount)
	assert.NotEmpty(t, f.order.OrderNumber)
	require.Len(t, f.order.Items, 2)

	// Unknown supplier and foreign items are rejected
	_, err := env.orders.CreateOrder(env.owner, env.project.ID, &CreateOrderRequest{
		SupplierID: uuid.New(),
		Items:      []OrderItemRequest{{ItemID: f.itemA.ID, QuantityOrdered: 1, UnitCost: 1}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSubmitRequiresCostedLines(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "Vendor")
	item := env.createItem(t, &CreateItemRequest{SKU: "FREE-01", Name: "Uncosted"})

	order, err := env.orders.CreateOrder(env.owner, env.project.ID, &CreateOrderRequest{
		SupplierID: supplier.ID,
		Items:      []OrderItemRequest{{ItemID: item.ID, QuantityOrdered: 4, UnitCost: 0}},
	})
	require.NoError(t, err)

	_, err = env.orders.SubmitOrder(env.owner, env.project.ID, order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Still draft after the failed submit
	current, err := env.orders.GetOrder(env.owner, env.project.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDraft, current.Status)
}

func TestMarkOrderedBooksOnOrder(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)
	f.place(t, env)

	a, err := env.ledger.GetItem(env.owner, env.project.ID, f.itemA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.QuantityOnOrder)

	b, err := env.ledger.GetItem(env.owner, env.project.ID, f.itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, b.QuantityOnOrder)
}

func TestReceiveItemsPartialThenComplete(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)
	f.place(t, env)

	// First delivery: A in full, B partially
	order, err := env.orders.ReceiveItems(env.owner, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemA.ID, Quantity: 10},
		{ItemID: f.itemB.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPartial, order.Status)

	for _, line := range order.Items {
		if line.ItemID == f.itemB.ID {
			assert.Equal(t, 2, line.Remaining())
		}
	}

	a, err := env.ledger.GetItem(env.owner, env.project.ID, f.itemA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.QuantityAvailable)
	assert.Equal(t, 0, a.QuantityOnOrder)

	b, err := env.ledger.GetItem(env.owner, env.project.ID, f.itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, b.QuantityAvailable)
	assert.Equal(t, 2, b.QuantityOnOrder)

	// Each receipt posted one inbound ledger movement referencing the order
	movementsA, err := env.ledger.ListMovements(env.owner, env.project.ID, f.itemA.ID)
	require.NoError(t, err)
	require.Len(t, movementsA, 1)
	assert.Equal(t, model.MovementIn, movementsA[0].Type)
	assert.Equal(t, model.ReferencePurchaseOrder, movementsA[0].ReferenceType)
	require.NotNil(t, movementsA[0].ReferenceID)
	assert.Equal(t, f.order.ID, *movementsA[0].ReferenceID)
	assert.Equal(t, int64(500), movementsA[0].UnitCost)

	// Second delivery completes the order
	order, err = env.orders.ReceiveItems(env.owner, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemB.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderReceived, order.Status)

	b, err = env.ledger.GetItem(env.owner, env.project.ID, f.itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, b.QuantityAvailable)
	assert.Equal(t, 0, b.QuantityOnOrder)

	balance, err := env.ledger.ReconstructBalance(env.owner, env.project.ID, f.itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestExcessReceiptRejectsWholeCall(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)
	f.place(t, env)

	// B only has 5 ordered; the whole call must fail, including A's valid part
	_, err := env.orders.ReceiveItems(env.owner, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemA.ID, Quantity: 5},
		{ItemID: f.itemB.ID, Quantity: 7},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindExcessReceipt))

	order, err := env.orders.GetOrder(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderOrdered, order.Status)
	for _, line := range order.Items {
		assert.Equal(t, 0, line.QuantityReceived)
	}

	a, err := env.ledger.GetItem(env.owner, env.project.ID, f.itemA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, a.QuantityAvailable)
	movements, err := env.ledger.ListMovements(env.owner, env.project.ID, f.itemA.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)

	// Split receipts against one line are summed during validation
	_, err = env.orders.ReceiveItems(env.owner, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemB.ID, Quantity: 3},
		{ItemID: f.itemB.ID, Quantity: 3},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindExcessReceipt))
}

func TestReceiveRequiresPlacedOrder(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)

	_, err := env.orders.ReceiveItems(env.owner, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemA.ID, Quantity: 1},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStateTransition))
}

func TestCancelOnlyBeforePlacement(t *testing.T) {
	env := newTestEnv(t)

	// Pending orders may cancel
	f := newOrderFixture(t, env)
	_, err := env.orders.SubmitOrder(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)
	order, err := env.orders.CancelOrder(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, order.Status)

	// Cancellation is terminal
	_, err = env.orders.SubmitOrder(env.owner, env.project.ID, f.order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStateTransition))

	// Placed orders may not cancel
	g := newOrderFixture(t, env)
	g.place(t, env)
	_, err = env.orders.CancelOrder(env.owner, env.project.ID, g.order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStateTransition))
}

func TestUpdateOrderOnlyWhileDraft(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)

	updated, err := env.orders.UpdateOrder(env.owner, env.project.ID, f.order.ID, &UpdateOrderRequest{
		Items: []OrderItemRequest{
			{ItemID: f.itemA.ID, QuantityOrdered: 2, UnitCost: 450},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(900), updated.TotalAmount)

	_, err = env.orders.SubmitOrder(env.owner, env.project.ID, f.order.ID)
	require.NoError(t, err)

	_, err = env.orders.UpdateOrder(env.owner, env.project.ID, f.order.ID, &UpdateOrderRequest{
		Items: []OrderItemRequest{{ItemID: f.itemB.ID, QuantityOrdered: 1, UnitCost: 100}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStateTransition))
}

func TestDeleteOrderOnlyBeforePlacement(t *testing.T) {
	env := newTestEnv(t)

	f := newOrderFixture(t, env)
	require.NoError(t, env.orders.DeleteOrder(env.owner, env.project.ID, f.order.ID))
	_, err := env.orders.GetOrder(env.owner, env.project.ID, f.order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// Line items are cascaded away
	var count int64
	require.NoError(t, env.db.Model(&model.PurchaseOrderItem{}).Where("order_id = ?", f.order.ID).Count(&count).Error)
	assert.Zero(t, count)

	g := newOrderFixture(t, env)
	g.place(t, env)
	err = env.orders.DeleteOrder(env.owner, env.project.ID, g.order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidStateTransition))
}

func TestOrderLifecycleAuthorization(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)

	// The user role creates and edits orders but may not run the lifecycle
	_, err := env.orders.SubmitOrder(env.user, env.project.ID, f.order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	_, err = env.orders.ReceiveItems(env.user, env.project.ID, f.order.ID, []ReceiptRequest{
		{ItemID: f.itemA.ID, Quantity: 1},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	// Viewers cannot create orders at all
	_, err = env.orders.CreateOrder(env.viewer, env.project.ID, &CreateOrderRequest{
		SupplierID: f.supplier.ID,
		Items:      []OrderItemRequest{{ItemID: f.itemA.ID, QuantityOrdered: 1, UnitCost: 1}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestListOrdersFilters(t *testing.T) {
	env := newTestEnv(t)
	f := newOrderFixture(t, env)
	g := newOrderFixture(t, env)
	_, err := env.orders.SubmitOrder(env.owner, env.project.ID, g.order.ID)
	require.NoError(t, err)

	assert.NotEqual(t, f.order.OrderNumber, g.order.OrderNumber)

	drafts, err := env.orders.ListOrders(env.owner, env.project.ID, repository.OrderFilter{Status: model.OrderDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, f.order.ID, drafts[0].ID)

	bySupplier, err := env.orders.ListOrders(env.owner, env.project.ID, repository.OrderFilter{SupplierID: &g.supplier.ID})
	require.NoError(t, err)
	require.Len(t, bySupplier, 1)
	assert.Equal(t, g.order.ID, bySupplier[0].ID)
}
