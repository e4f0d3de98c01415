package shop

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// MovementType enumerates stock movement directions understood by the backend.
type MovementType string

const (
	// MovementEntry adds units to stock.
	MovementEntry MovementType = "entry"
	// MovementExit removes units from stock.
	MovementExit MovementType = "exit"
)

// Product is a catalogue item as served by the backend.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stockQuantity"`
	Category        string          `json:"category,omitempty"`
	CategoryID      string          `json:"categoryId,omitempty"`
	Photos          []string        `json:"photos"`
	Characteristics map[string]any  `json:"characteristics,omitempty"`
}

// CartLine is one product in a cart.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Cart is an ordered list of lines, at most one per product.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// CustomerInfo is the delivery contact collected before checkout.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Complete reports whether name and phone are present.
func (c CustomerInfo) Complete() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Phone) != ""
}

// OrderItem is one order line with the price seen at checkout.
type OrderItem struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
}

// Order is the snapshot submitted to the backend.
type Order struct {
	ID              string      `json:"id,omitempty"`
	CompanyID       string      `json:"companyId"`
	ShippingAddress string      `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
}

// StockMovement is a signed change of a product's stock.
type StockMovement struct {
	Type     MovementType `json:"type"`
	Quantity int          `json:"quantity"`
}

// UnavailableLine is a cart line the current stock cannot serve.
type UnavailableLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Removed   bool   `json:"removed,omitempty"`
}

var (
	// ErrInsufficientStock is matched by every StockError.
	ErrInsufficientStock = fmt.Errorf("shop: insufficient stock: %w", httpx.ErrValidation)
	// ErrInvalidQuantity indicates a non-positive quantity where one is required.
	ErrInvalidQuantity = fmt.Errorf("shop: quantity must be positive: %w", httpx.ErrValidation)
	// ErrEmptyCart rejects checkout of an empty cart.
	ErrEmptyCart = fmt.Errorf("shop: cart is empty: %w", httpx.ErrValidation)
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = fmt.Errorf("shop: product not found: %w", httpx.ErrNotFound)
	// ErrCartNotFound indicates an unknown or expired cart id.
	ErrCartNotFound = fmt.Errorf("shop: cart not found: %w", httpx.ErrNotFound)
	// ErrNotInCart indicates a product absent from the cart.
	ErrNotInCart = fmt.Errorf("shop: product not in cart: %w", httpx.ErrNotFound)
	// ErrCustomerInfoRequired suspends checkout until name and phone are known.
	ErrCustomerInfoRequired = errors.New("shop: customer name and phone required")
	// ErrMissingCompany means no selling company is configured.
	ErrMissingCompany = errors.New("shop: company id is not configured")
)

// StockError rejects a cart change that would exceed stock. The cart is
// left unchanged.
type StockError struct {
	ProductID string
	Name      string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("shop: insufficient stock for %s: only %d unit(s) left", e.Name, e.Available)
}

// Unwrap lets callers match ErrInsufficientStock.
func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// FieldErrors reports the available quantity against the quantity field.
func (e *StockError) FieldErrors() map[string]string {
	return map[string]string{"quantity": fmt.Sprintf("only %d available", e.Available)}
}

// ConflictError lists the cart lines that can no longer be served.
type ConflictError struct {
	Lines []UnavailableLine
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		names = append(names, l.Name)
	}
	return "shop: not enough stock for " + strings.Join(names, ", ")
}

// Unwrap lets callers match httpx.ErrConflict.
func (e *ConflictError) Unwrap() error { return httpx.ErrConflict }

// FieldErrors maps each product id to its available quantity.
func (e *ConflictError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Lines))
	for _, l := range e.Lines {
		if l.Removed {
			out[l.ProductID] = "no longer sold"
			continue
		}
		out[l.ProductID] = fmt.Sprintf("only %d available", l.Available)
	}
	return out
}

// Catalog is a product list indexed by id.
type Catalog []Product

// Find returns the product with id.
func (c Catalog) Find(id string) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Filter keeps products of category (all when empty or "all") whose name
// or description contains query, case-insensitively.
func (c Catalog) Filter(category, query string) Catalog {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make(Catalog, 0, len(c))
	for _, p := range c {
		if category != "" && category != "all" && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns the distinct non-empty category names, sorted.
func (c Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range c {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
