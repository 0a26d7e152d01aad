package service

import (
	"testing"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorderScan(t *testing.T) {
	env := newTestEnv(t)

	// shortfall 8, configured reorder quantity wins when larger
	env.createItem(t, &CreateItemRequest{
		SKU: "LOW-A", Name: "Deep shortfall",
		InitialQuantity: 2, ReorderLevel: intPtr(10), ReorderQuantity: intPtr(25),
	})
	// shortfall 1, no configured quantity
	env.createItem(t, &CreateItemRequest{
		SKU: "LOW-B", Name: "Shallow shortfall",
		InitialQuantity: 4, ReorderLevel: intPtr(5),
	})
	// at the boundary: equal to the reorder level still counts as low
	env.createItem(t, &CreateItemRequest{
		SKU: "LOW-C", Name: "At the line",
		InitialQuantity: 5, ReorderLevel: intPtr(5),
	})
	// healthy stock and unconfigured items stay out
	env.createItem(t, &CreateItemRequest{
		SKU: "OK-D", Name: "Healthy",
		InitialQuantity: 50, ReorderLevel: intPtr(5),
	})
	env.createItem(t, &CreateItemRequest{
		SKU: "OK-E", Name: "No threshold", InitialQuantity: 0,
	})

	suggestions, err := env.reorder.Scan(env.viewer, env.project.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	// Largest shortfall first
	assert.Equal(t, "LOW-A", suggestions[0].Item.SKU)
	assert.Equal(t, 25, suggestions[0].SuggestedQuantity)
	assert.Equal(t, "LOW-B", suggestions[1].Item.SKU)
	assert.Equal(t, 1, suggestions[1].SuggestedQuantity)
	assert.Equal(t, "LOW-C", suggestions[2].Item.SKU)
	assert.Equal(t, 0, suggestions[2].SuggestedQuantity)

	_, err = env.reorder.Scan(env.stranger, env.project.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)

	guatemala := env.createItem(t, &CreateItemRequest{
		SKU: "BRU-RG-001", Name: "Roasted Guatemala", Location: "shelf-1", InitialQuantity: 10,
	})
	env.createItem(t, &CreateItemRequest{SKU: "ETH-01", Name: "Ethiopia Natural"})

	_, err := env.ledger.PostMovement(env.owner, env.project.ID, guatemala.ID, &MovementRequest{
		Type: model.MovementOut, Quantity: 4,
	})
	require.NoError(t, err)

	results, err := env.query.Search(env.viewer, env.project.ID, "guatemala", SearchFilter{})
	require.NoError(t, err)
	require.Len(t, results.Items, 1)
	assert.Equal(t, "BRU-RG-001", results.Items[0].SKU)

	// Movement filter by type
	results, err = env.query.Search(env.viewer, env.project.ID, "", SearchFilter{
		MovementType: model.MovementOut,
	})
	require.NoError(t, err)
	require.Len(t, results.Movements, 1)
	assert.Equal(t, model.MovementOut, results.Movements[0].Type)
}

func TestMovementSummary(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, &CreateItemRequest{SKU: "SUM-01", Name: "Summed", InitialQuantity: 20})
	_, err := env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementOut, Quantity: 6,
	})
	require.NoError(t, err)
	_, err = env.ledger.PostMovement(env.owner, env.project.ID, item.ID, &MovementRequest{
		Type: model.MovementIn, Quantity: 3,
	})
	require.NoError(t, err)

	rows, err := env.query.MovementSummary(env.viewer, env.project.ID, 0) // defaults to 7 days
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 23, rows[0].Inbound) // opening 20 + inbound 3
	assert.Equal(t, 6, rows[0].Outbound)
}
