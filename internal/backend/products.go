package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/africanut/holding-admin/internal/shop"
)

type productWire struct {
	ID              flexID          `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	Category        *named          `json:"category"`
	CategoryID      flexID          `json:"categoryId"`
	Photos          []string        `json:"photos"`
	Characteristics map[string]any  `json:"characteristics"`
}

func (w productWire) product() shop.Product {
	p := shop.Product{
		ID:              string(w.ID),
		Name:            w.Name,
		Price:           w.Price,
		StockQuantity:   w.StockQuantity,
		CategoryID:      string(w.CategoryID),
		Photos:          w.Photos,
		Characteristics: w.Characteristics,
	}
	if w.Description != nil {
		p.Description = *w.Description
	}
	if w.Category != nil {
		p.Category = w.Category.Name
		if p.CategoryID == "" {
			p.CategoryID = string(w.Category.ID)
		}
	}
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return p
}

type productPayload struct {
	Name            string         `json:"name"`
	Description     *string        `json:"description"`
	Price           json.Number    `json:"price"`
	Photos          []string       `json:"photos"`
	CategoryID      string         `json:"categoryId"`
	Characteristics map[string]any `json:"characteristics"`
	StockQuantity   int            `json:"stock_quantity"`
}

func productPayloadOf(p shop.Product) productPayload {
	out := productPayload{
		Name:            p.Name,
		Price:           json.Number(p.Price.String()),
		Photos:          p.Photos,
		CategoryID:      p.CategoryID,
		Characteristics: p.Characteristics,
		StockQuantity:   p.StockQuantity,
	}
	if p.Description != "" {
		out.Description = &p.Description
	}
	if out.Photos == nil {
		out.Photos = []string{}
	}
	if out.Characteristics == nil {
		out.Characteristics = map[string]any{}
	}
	return out
}

// ListProducts fetches the full catalogue. It is public on the backend.
func (c *Client) ListProducts(ctx context.Context) ([]shop.Product, error) {
	var wires []productWire
	if err := c.do(ctx, call{op: "list products", method: http.MethodGet, path: "/api/products", out: &wires}); err != nil {
		return nil, err
	}
	out := make([]shop.Product, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.product())
	}
	return out, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id string) (shop.Product, error) {
	var w productWire
	if err := c.do(ctx, call{op: "get product", method: http.MethodGet, path: "/api/products/" + url.PathEscape(id), out: &w}); err != nil {
		if IsKind(err, KindNotFound) {
			return shop.Product{}, shop.ErrProductNotFound
		}
		return shop.Product{}, err
	}
	return w.product(), nil
}

// CreateProduct creates a catalogue item.
func (c *Client) CreateProduct(ctx context.Context, p shop.Product) (shop.Product, error) {
	var w productWire
	err := c.do(ctx, call{op: "create product", method: http.MethodPost, path: "/api/products", body: productPayloadOf(p), out: &w, protected: true})
	if err != nil {
		return shop.Product{}, err
	}
	return w.product(), nil
}

// UpdateProduct replaces a catalogue item.
func (c *Client) UpdateProduct(ctx context.Context, id string, p shop.Product) (shop.Product, error) {
	var w productWire
	err := c.do(ctx, call{op: "update product", method: http.MethodPut, path: "/api/products/" + url.PathEscape(id), body: productPayloadOf(p), out: &w, protected: true})
	if err != nil {
		return shop.Product{}, err
	}
	return w.product(), nil
}

// RecordStockMovement posts an entry or exit movement for a product.
func (c *Client) RecordStockMovement(ctx context.Context, productID string, m shop.StockMovement) error {
	return c.do(ctx, call{
		op:        "stock movement",
		method:    http.MethodPost,
		path:      "/api/products/" + url.PathEscape(productID) + "/stock/movements",
		body:      m,
		protected: true,
	})
}
