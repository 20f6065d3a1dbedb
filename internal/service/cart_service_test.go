package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tasheen2002/Security-Project/internal/repository"
)

func cartFixture() (*CartService, *memCartRepo, *memInventory) {
	inventory := newMemInventory()
	inventory.addProduct("prod-a", "Widget", 10.00, 50)

	carts := &memCartRepo{}
	svc := NewCartService(carts, inventory, noopCache{}, zap.NewNop())
	return svc, carts, inventory
}

func TestGetCart_MissingCartIsVirtualEmpty(t *testing.T) {
	svc, _, _ := cartFixture()

	cart, err := svc.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.True(t, cart.IsEmpty())
}

func TestAddLine_SnapshotsProduct(t *testing.T) {
	svc, carts, _ := cartFixture()

	cart, err := svc.AddLine(context.Background(), "user-1", "prod-a", 2)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	line := cart.Items[0]
	assert.NotEmpty(t, line.ID)
	assert.Equal(t, "Widget", line.ProductName)
	assert.Equal(t, 10.00, line.Price)
	assert.Equal(t, int64(2), line.Quantity)
	assert.Len(t, carts.lines(), 1)
}

func TestAddLine_MergesSameProduct(t *testing.T) {
	svc, _, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "prod-a", 2)
	require.NoError(t, err)

	cart, err := svc.AddLine(context.Background(), "user-1", "prod-a", 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1, "same product merges into one line")
	assert.Equal(t, int64(5), cart.Items[0].Quantity)
}

func TestAddLine_MergeOverCapRejected(t *testing.T) {
	svc, carts, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "prod-a", 60)
	require.NoError(t, err)

	_, err = svc.AddLine(context.Background(), "user-1", "prod-a", 50)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)

	// rejected, not clamped: the line keeps its prior quantity
	lines := carts.lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(60), lines[0].Quantity)
}

func TestAddLine_QuantityBounds(t *testing.T) {
	svc, _, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "prod-a", 0)
	var verr ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.AddLine(context.Background(), "user-1", "prod-a", 101)
	assert.ErrorAs(t, err, &verr)

	_, err = svc.AddLine(context.Background(), "user-1", "prod-a", 100)
	assert.NoError(t, err)
}

func TestAddLine_UnknownProduct(t *testing.T) {
	svc, _, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "nope", 1)

	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestAddLine_MissingProductID(t *testing.T) {
	svc, _, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "", 1)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "productId", verr.Field)
}

func TestUpdateLine_ZeroQuantityRemoves(t *testing.T) {
	svc, carts, _ := cartFixture()

	cart, err := svc.AddLine(context.Background(), "user-1", "prod-a", 2)
	require.NoError(t, err)
	lineID := cart.Items[0].ID

	updated, err := svc.UpdateLine(context.Background(), "user-1", lineID, 0)

	require.NoError(t, err)
	assert.Empty(t, updated.Items)
	assert.Empty(t, carts.lines())
}

func TestUpdateLine_OverCapRejected(t *testing.T) {
	svc, _, _ := cartFixture()

	cart, err := svc.AddLine(context.Background(), "user-1", "prod-a", 2)
	require.NoError(t, err)

	_, err = svc.UpdateLine(context.Background(), "user-1", cart.Items[0].ID, 101)

	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateLine_UnknownLine(t *testing.T) {
	svc, _, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "prod-a", 1)
	require.NoError(t, err)

	_, err = svc.UpdateLine(context.Background(), "user-1", "no-such-line", 5)

	assert.ErrorIs(t, err, repository.ErrLineNotFound)
}

func TestClearCart_MissingCartIsNoop(t *testing.T) {
	svc, _, _ := cartFixture()

	err := svc.ClearCart(context.Background(), "user-1")

	assert.NoError(t, err)
}

func TestClearCart_EmptiesLines(t *testing.T) {
	svc, carts, _ := cartFixture()

	_, err := svc.AddLine(context.Background(), "user-1", "prod-a", 2)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), "user-1"))
	assert.Empty(t, carts.lines())
}
