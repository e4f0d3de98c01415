package shop

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/platform/kv"
)

type fakeBackend struct {
	mu        sync.Mutex
	products  map[string]Product
	calls     int
	orders    []Order
	orderErr  error
	orderID   string
	movements []StockMovement
	// afterOrder runs when CreateOrder fails, to simulate a concurrent buyer.
	afterOrder func()
}

func newFakeBackend(products ...Product) *fakeBackend {
	b := &fakeBackend{products: map[string]Product{}, orderID: "42"}
	for _, p := range products {
		b.products[p.ID] = p
	}
	return b
}

func (b *fakeBackend) ListProducts(ctx context.Context) ([]Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	out := make([]Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	return out, nil
}

func (b *fakeBackend) GetProduct(ctx context.Context, id string) (Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	p, ok := b.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (b *fakeBackend) CreateProduct(ctx context.Context, p Product) (Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	p.ID = fmt.Sprintf("p-%d", len(b.products)+1)
	b.products[p.ID] = p
	return p, nil
}

func (b *fakeBackend) UpdateProduct(ctx context.Context, id string, p Product) (Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.products[id] = p
	return p, nil
}

func (b *fakeBackend) RecordStockMovement(ctx context.Context, productID string, m StockMovement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.movements = append(b.movements, m)
	p := b.products[productID]
	if m.Type == MovementEntry {
		p.StockQuantity += m.Quantity
	} else {
		p.StockQuantity -= m.Quantity
	}
	b.products[productID] = p
	return nil
}

func (b *fakeBackend) CreateOrder(ctx context.Context, o Order) (Order, error) {
	b.mu.Lock()
	b.calls++
	err := b.orderErr
	hook := b.afterOrder
	if err == nil {
		o.ID = b.orderID
		b.orders = append(b.orders, o)
	}
	b.mu.Unlock()
	if err != nil && hook != nil {
		hook()
	}
	return o, err
}

func (b *fakeBackend) setStock(id string, qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.products[id]
	p.StockQuantity = qty
	b.products[id] = p
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type staticAuth bool

func (a staticAuth) Authenticated(time.Time) bool { return bool(a) }

func newDrafts(t *testing.T) (*RedisDrafts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDrafts(kv.NewStore(client, "holding:cart"), time.Hour), mr
}

func newTestService(t *testing.T, backend Backend, auth Authenticator) *Service {
	t.Helper()
	drafts, _ := newDrafts(t)
	return NewService(backend, drafts, auth, Config{CompanyID: "company-1", WhatsAppNumber: "237620370286"}, nil)
}

func filledCart(t *testing.T, svc *Service, customer bool) string {
	t.Helper()
	ctx := context.Background()
	d, err := svc.NewCart(ctx)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, d.ID, "A", 2)
	require.NoError(t, err)
	if customer {
		_, err = svc.SetCustomer(ctx, d.ID, CustomerInfo{Name: " Awa ", Phone: "690000000", Address: "Douala"})
		require.NoError(t, err)
	}
	return d.ID
}

func TestPlaceOrderWithoutSessionMakesNoCall(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, true)
	before := backend.callCount()

	svc.auth = staticAuth(false)
	_, err := svc.PlaceOrder(context.Background(), cartID)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
	require.Equal(t, before, backend.callCount())
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := newTestService(t, newFakeBackend(), staticAuth(true))
	d, err := svc.NewCart(context.Background())
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), d.ID)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderAsksForCustomerInfo(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, false)

	_, err := svc.PlaceOrder(context.Background(), cartID)
	require.ErrorIs(t, err, ErrCustomerInfoRequired)
	require.Empty(t, backend.orders)

	d, err := svc.Cart(context.Background(), cartID)
	require.NoError(t, err)
	require.Equal(t, 2, d.Cart.Quantity("A"))
}

func TestPlaceOrderRechecksStock(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, true)
	backend.setStock("A", 1)

	_, err := svc.PlaceOrder(context.Background(), cartID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, []UnavailableLine{{ProductID: "A", Name: "Produit A", Requested: 2, Available: 1}}, conflict.Lines)
	require.Empty(t, backend.orders)
}

func TestPlaceOrderConflictFromBackendRefetches(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, true)

	backend.orderErr = fmt.Errorf("insufficient stock: %w", httpx.ErrConflict)
	backend.afterOrder = func() { backend.setStock("A", 0) }

	_, err := svc.PlaceOrder(context.Background(), cartID)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, 0, conflict.Lines[0].Available)

	_, err = svc.Cart(context.Background(), cartID)
	require.NoError(t, err)
}

func TestPlaceOrderSuccessClearsCart(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, true)

	checkout, err := svc.PlaceOrder(context.Background(), cartID)
	require.NoError(t, err)
	require.Equal(t, "42", checkout.Order.ID)
	require.Equal(t, "3000", checkout.Total)
	require.Contains(t, checkout.Message, "Produit A (x2)")
	require.Contains(t, checkout.Message, "Nom: Awa ")
	require.Contains(t, checkout.Message, "#42")

	link, err := url.Parse(checkout.WhatsAppURL)
	require.NoError(t, err)
	require.Equal(t, "/237620370286", link.Path)
	require.Equal(t, checkout.Message, link.Query().Get("text"))

	require.Len(t, backend.orders, 1)
	sent := backend.orders[0]
	require.Equal(t, "company-1", sent.CompanyID)
	require.Equal(t, "Douala", sent.ShippingAddress)
	require.True(t, sent.Items[0].PriceAtPurchase.Equal(decimal.NewFromInt(1500)))

	_, err = svc.Cart(context.Background(), cartID)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestPlaceOrderKeepsCartWithoutOrderID(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 5))
	backend.orderID = ""
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, true)

	_, err := svc.PlaceOrder(context.Background(), cartID)
	require.ErrorIs(t, err, httpx.ErrUpstream)
	_, err = svc.Cart(context.Background(), cartID)
	require.NoError(t, err)
}

func TestAddToCartUsesFreshStock(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 3))
	svc := newTestService(t, backend, staticAuth(true))
	ctx := context.Background()
	d, err := svc.NewCart(ctx)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, d.ID, "A", 3)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, d.ID, "A", 1)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 3, stockErr.Available)

	backend.setStock("A", 4)
	d, err = svc.AddToCart(ctx, d.ID, "A", 1)
	require.NoError(t, err)
	require.Equal(t, 4, d.Cart.Quantity("A"))

	_, err = svc.AddToCart(ctx, d.ID, "missing", 1)
	require.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.AddToCart(ctx, "nope", "A", 1)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestConcurrentAddsKeepEveryLine(t *testing.T) {
	const n = 8
	products := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, product(fmt.Sprintf("P%d", i), 1000, 5))
	}
	svc := newTestService(t, newFakeBackend(products...), staticAuth(true))
	ctx := context.Background()
	d, err := svc.NewCart(ctx)
	require.NoError(t, err)

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for _, p := range products {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.AddToCart(ctx, d.ID, id, 2)
			errs <- err
		}(p.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	d, err = svc.Cart(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, d.Cart.Lines, n)
	for _, p := range products {
		require.Equal(t, 2, d.Cart.Quantity(p.ID))
	}
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 3))
	svc := newTestService(t, backend, staticAuth(true))
	cartID := filledCart(t, svc, false)

	d, err := svc.SetQuantity(context.Background(), cartID, "A", 0)
	require.NoError(t, err)
	require.True(t, d.Cart.Empty())
}

func TestDraftExpires(t *testing.T) {
	drafts, mr := newDrafts(t)
	svc := NewService(newFakeBackend(), drafts, staticAuth(true), Config{}, nil)
	d, err := svc.NewCart(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Cart(context.Background(), d.ID)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestAdjustStock(t *testing.T) {
	backend := newFakeBackend(product("A", 1500, 10))
	svc := newTestService(t, backend, staticAuth(true))

	p, err := svc.AdjustStock(context.Background(), "A", 7)
	require.NoError(t, err)
	require.Equal(t, 7, p.StockQuantity)
	require.Equal(t, []StockMovement{{Type: MovementExit, Quantity: 3}}, backend.movements)

	_, err = svc.AdjustStock(context.Background(), "A", 7)
	require.NoError(t, err)
	require.Len(t, backend.movements, 1)
}

func TestCreateProductValidatesFirst(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(t, backend, staticAuth(true))

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "Tilapia", Price: "2500", CategoryID: "c1", Characteristics: "{bad"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, backend.callCount())
}
