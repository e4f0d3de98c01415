package shop

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

func product(id string, price int64, stock int) Product {
	return Product{ID: id, Name: "Produit " + id, Price: decimal.NewFromInt(price), StockQuantity: stock}
}

func TestAddBeyondStockLeavesCartUnchanged(t *testing.T) {
	a := product("A", 1500, 3)
	cart, err := Cart{}.Add(a, 3)
	require.NoError(t, err)

	after, err := cart.Add(a, 1)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 3, stockErr.Available)
	require.Equal(t, "A", stockErr.ProductID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, 3, after.Quantity("A"))
	require.Equal(t, 3, cart.Quantity("A"))
	require.Contains(t, err.Error(), "3")
}

func TestAddMergesLines(t *testing.T) {
	a := product("A", 100, 10)
	cart, err := Cart{}.Add(a, 2)
	require.NoError(t, err)
	cart, err = cart.Add(a, 3)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	require.Equal(t, 5, cart.Lines[0].Quantity)

	_, err = cart.Add(a, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddDoesNotAliasPreviousCart(t *testing.T) {
	a := product("A", 100, 10)
	first, err := Cart{}.Add(a, 1)
	require.NoError(t, err)
	second, err := first.Add(a, 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.Quantity("A"))
	require.Equal(t, 2, second.Quantity("A"))
}

func TestSetQuantity(t *testing.T) {
	a := product("A", 100, 4)
	cart, err := Cart{}.Add(a, 1)
	require.NoError(t, err)

	cart, err = cart.SetQuantity(a, 4)
	require.NoError(t, err)
	require.Equal(t, 4, cart.Quantity("A"))

	_, err = cart.SetQuantity(a, 5)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 4, stockErr.Available)

	cart, err = cart.SetQuantity(a, 0)
	require.NoError(t, err)
	require.True(t, cart.Empty())

	_, err = cart.SetQuantity(a, 1)
	require.ErrorIs(t, err, ErrNotInCart)
}

func TestTotalTracksMutations(t *testing.T) {
	a := product("A", 1500, 10)
	b := product("B", 250, 10)

	cart, _ := Cart{}.Add(a, 2)
	cart, _ = cart.Add(b, 4)
	require.True(t, cart.Total().Equal(decimal.NewFromInt(4000)))
	require.True(t, cart.Total().Equal(cart.Total()))

	cart, _ = cart.SetQuantity(b, 1)
	require.True(t, cart.Total().Equal(decimal.NewFromInt(3250)))

	cart = cart.Remove("A")
	require.True(t, cart.Total().Equal(decimal.NewFromInt(250)))
	require.True(t, Cart{}.Total().IsZero())
}

func TestCartNeverExceedsStockUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	stock := map[string]int{"A": 5, "B": 2, "C": 0}
	var cart Cart

	for i := 0; i < 2000; i++ {
		id := []string{"A", "B", "C"}[rng.Intn(3)]
		if rng.Intn(10) == 0 {
			stock[id] = rng.Intn(6)
		}
		p := product(id, 100, stock[id])
		before := cart

		var err error
		switch rng.Intn(3) {
		case 0:
			cart, err = cart.Add(p, 1+rng.Intn(3))
		case 1:
			cart, err = cart.SetQuantity(p, rng.Intn(7))
		default:
			cart = cart.Remove(id)
		}
		if err != nil {
			require.Equal(t, before, cart)
			var stockErr *StockError
			if errors.As(err, &stockErr) {
				require.Equal(t, stock[id], stockErr.Available)
			}
			continue
		}
		if cart.Quantity(id) > 0 {
			require.LessOrEqual(t, cart.Quantity(id), stock[id])
		}

		expected := decimal.Zero
		for _, l := range cart.Lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
			expected = expected.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		require.True(t, cart.Total().Equal(expected))
	}
}

func TestUnavailable(t *testing.T) {
	a := product("A", 100, 5)
	b := product("B", 100, 5)
	cart, _ := Cart{}.Add(a, 3)
	cart, _ = cart.Add(b, 2)

	fresh := Catalog{product("A", 100, 1)}
	lines := cart.Unavailable(fresh)
	require.Len(t, lines, 2)
	require.Equal(t, UnavailableLine{ProductID: "A", Name: "Produit A", Requested: 3, Available: 1}, lines[0])
	require.True(t, lines[1].Removed)

	require.Empty(t, cart.Unavailable(Catalog{a, b}))
}

func TestOrderSnapshot(t *testing.T) {
	cart, _ := Cart{}.Add(product("A", 1500, 5), 2)
	cart = cart.Reprice(Catalog{product("A", 1800, 5)})

	order := cart.Order("company-1", CustomerInfo{Name: "Awa", Phone: "690000000", Address: "Douala"})
	require.Equal(t, "company-1", order.CompanyID)
	require.Equal(t, "Douala", order.ShippingAddress)
	require.Len(t, order.Items, 1)
	require.True(t, order.Items[0].PriceAtPurchase.Equal(decimal.NewFromInt(1800)))
}

func TestStockMovementFor(t *testing.T) {
	p := product("A", 100, 10)

	move, ok, err := StockMovementFor(p, 14)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StockMovement{Type: MovementEntry, Quantity: 4}, move)

	move, ok, err = StockMovementFor(p, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StockMovement{Type: MovementExit, Quantity: 10}, move)

	_, ok, err = StockMovementFor(p, 10)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = StockMovementFor(p, -1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCatalogFilterAndCategories(t *testing.T) {
	catalog := Catalog{
		{ID: "1", Name: "Tilapia frais", Category: "Poisson"},
		{ID: "2", Name: "Maïs", Description: "Sac de 50kg", Category: "Céréales"},
		{ID: "3", Name: "Silure fumé", Category: "Poisson"},
		{ID: "4", Name: "Sans catégorie"},
	}
	require.Len(t, catalog.Filter("Poisson", ""), 2)
	require.Len(t, catalog.Filter("all", "SAC"), 1)
	require.Len(t, catalog.Filter("", ""), 4)
	require.Equal(t, []string{"Céréales", "Poisson"}, catalog.Categories())
}

func TestConflictErrorFields(t *testing.T) {
	err := &ConflictError{Lines: []UnavailableLine{
		{ProductID: "A", Name: "Tilapia", Available: 1},
		{ProductID: "B", Name: "Maïs", Removed: true},
	}}
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, map[string]string{"A": "only 1 available", "B": "no longer sold"}, err.FieldErrors())
	require.Equal(t, "shop: not enough stock for Tilapia, Maïs", err.Error())
}
