package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// ErrUnauthorized refuses checkout and admin calls without a session.
var ErrUnauthorized = fmt.Errorf("shop: sign-in required: %w", httpx.ErrUnauthorized)

// Backend is the remote product and order API.
type Backend interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, p Product) (Product, error)
	RecordStockMovement(ctx context.Context, productID string, m StockMovement) error
	CreateOrder(ctx context.Context, o Order) (Order, error)
}

// Authenticator reports whether a usable session is held.
type Authenticator interface {
	Authenticated(now time.Time) bool
}

// Config carries the shop settings.
type Config struct {
	CompanyID      string
	WhatsAppNumber string
}

// Checkout is the result of a confirmed order.
type Checkout struct {
	Order       Order  `json:"order"`
	Total       string `json:"total"`
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsappUrl"`
}

// Service orchestrates carts against the live catalogue.
type Service struct {
	backend Backend
	drafts  DraftStore
	auth    Authenticator
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs the shop service.
func NewService(backend Backend, drafts DraftStore, auth Authenticator, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, drafts: drafts, auth: auth, cfg: cfg, logger: logger, now: time.Now}
}

// Products fetches the current catalogue.
func (s *Service) Products(ctx context.Context) (Catalog, error) {
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Catalog(products), nil
}

// NewCart creates an empty persisted cart.
func (s *Service) NewCart(ctx context.Context) (Draft, error) {
	d := Draft{ID: uuid.NewString(), Cart: Cart{Lines: []CartLine{}}, UpdatedAt: s.now()}
	if err := s.drafts.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Cart returns a persisted cart.
func (s *Service) Cart(ctx context.Context, id string) (Draft, error) {
	return s.drafts.Load(ctx, id)
}

// AddToCart adds qty units of productID against its freshest stock.
func (s *Service) AddToCart(ctx context.Context, cartID, productID string, qty int) (Draft, error) {
	p, err := s.productForCart(ctx, cartID, productID)
	if err != nil {
		return Draft{}, err
	}
	return s.update(ctx, cartID, func(d *Draft) error {
		cart, err := d.Cart.Add(p, qty)
		if err != nil {
			return err
		}
		d.Cart = cart
		return nil
	})
}

// SetQuantity replaces the quantity of productID. qty below one removes it.
func (s *Service) SetQuantity(ctx context.Context, cartID, productID string, qty int) (Draft, error) {
	if qty < 1 {
		return s.RemoveFromCart(ctx, cartID, productID)
	}
	p, err := s.productForCart(ctx, cartID, productID)
	if err != nil {
		return Draft{}, err
	}
	return s.update(ctx, cartID, func(d *Draft) error {
		cart, err := d.Cart.SetQuantity(p, qty)
		if err != nil {
			return err
		}
		d.Cart = cart
		return nil
	})
}

// RemoveFromCart drops productID from the cart.
func (s *Service) RemoveFromCart(ctx context.Context, cartID, productID string) (Draft, error) {
	return s.update(ctx, cartID, func(d *Draft) error {
		d.Cart = d.Cart.Remove(productID)
		return nil
	})
}

// SetCustomer stores the delivery contact on the cart.
func (s *Service) SetCustomer(ctx context.Context, cartID string, info CustomerInfo) (Draft, error) {
	customer := CustomerInfo{
		Name:    strings.TrimSpace(info.Name),
		Phone:   strings.TrimSpace(info.Phone),
		Address: strings.TrimSpace(info.Address),
	}
	return s.update(ctx, cartID, func(d *Draft) error {
		d.Customer = customer
		return nil
	})
}

// PlaceOrder re-checks the cart against fresh stock and submits it. It
// returns ErrCustomerInfoRequired when the contact is incomplete and
// *ConflictError when stock no longer covers the cart. The draft is removed
// only once the backend has returned an order id.
func (s *Service) PlaceOrder(ctx context.Context, cartID string) (Checkout, error) {
	if s.auth == nil || !s.auth.Authenticated(s.now()) {
		return Checkout{}, ErrUnauthorized
	}
	d, err := s.drafts.Load(ctx, cartID)
	if err != nil {
		return Checkout{}, err
	}
	if d.Cart.Empty() {
		return Checkout{}, ErrEmptyCart
	}
	if s.cfg.CompanyID == "" {
		return Checkout{}, ErrMissingCompany
	}

	catalog, err := s.Products(ctx)
	if err != nil {
		return Checkout{}, err
	}
	if lines := d.Cart.Unavailable(catalog); len(lines) > 0 {
		return Checkout{}, &ConflictError{Lines: lines}
	}
	if !d.Customer.Complete() {
		return Checkout{}, ErrCustomerInfoRequired
	}

	cart := d.Cart.Reprice(catalog)
	order, err := s.backend.CreateOrder(ctx, cart.Order(s.cfg.CompanyID, d.Customer))
	if err != nil {
		if errors.Is(err, httpx.ErrConflict) {
			return Checkout{}, s.conflictAfterSubmit(ctx, cart, err)
		}
		return Checkout{}, err
	}
	if order.ID == "" {
		return Checkout{}, fmt.Errorf("shop: order accepted without id: %w", httpx.ErrUpstream)
	}

	if err := s.drafts.Delete(ctx, cartID); err != nil {
		s.logger.Warn("clear cart after order", slog.String("cart", cartID), slog.Any("error", err))
	}
	msg := OrderMessage(order.ID, cart, d.Customer)
	s.logger.Info("order placed",
		slog.String("order", order.ID),
		slog.String("cart", cartID),
		slog.Int("lines", len(cart.Lines)),
		slog.String("total", cart.Total().String()),
	)
	return Checkout{
		Order:       order,
		Total:       cart.Total().String(),
		Message:     msg,
		WhatsAppURL: WhatsAppLink(s.cfg.WhatsAppNumber, msg),
	}, nil
}

// conflictAfterSubmit re-fetches stock after the backend refused the order
// and names the lines it can no longer serve.
func (s *Service) conflictAfterSubmit(ctx context.Context, cart Cart, cause error) error {
	catalog, err := s.Products(ctx)
	if err != nil {
		return fmt.Errorf("shop: refresh after conflict: %w", errors.Join(cause, err))
	}
	lines := cart.Unavailable(catalog)
	if len(lines) == 0 {
		return cause
	}
	return &ConflictError{Lines: lines}
}

// AdjustStock brings productID's stock to target through a stock movement.
func (s *Service) AdjustStock(ctx context.Context, productID string, target int) (Product, error) {
	p, err := s.backend.GetProduct(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	move, ok, err := StockMovementFor(p, target)
	if err != nil || !ok {
		return p, err
	}
	if err := s.backend.RecordStockMovement(ctx, productID, move); err != nil {
		return Product{}, err
	}
	s.logger.Info("stock adjusted",
		slog.String("product", productID),
		slog.String("type", string(move.Type)),
		slog.Int("quantity", move.Quantity),
	)
	return s.backend.GetProduct(ctx, productID)
}

// CreateProduct validates and creates a product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	p, err := ValidateProduct(in)
	if err != nil {
		return Product{}, err
	}
	return s.backend.CreateProduct(ctx, p)
}

// UpdateProduct validates and replaces a product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	p, err := ValidateProduct(in)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return s.backend.UpdateProduct(ctx, id, p)
}

// productForCart fetches the product while checking that the cart exists,
// so an expired cart fails fast without waiting on the backend.
func (s *Service) productForCart(ctx context.Context, cartID, productID string) (Product, error) {
	var p Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.drafts.Load(gctx, cartID)
		return err
	})
	g.Go(func() error {
		var err error
		p, err = s.backend.GetProduct(gctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) update(ctx context.Context, cartID string, fn func(*Draft) error) (Draft, error) {
	return s.drafts.Update(ctx, cartID, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		d.UpdatedAt = s.now()
		return nil
	})
}
