package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/africanut/holding-admin/internal/shop"
)

type orderItemWire struct {
	ProductID       string      `json:"productId"`
	Quantity        int         `json:"quantity"`
	PriceAtPurchase json.Number `json:"priceAtPurchase"`
}

type orderPayload struct {
	CompanyID       string          `json:"companyId"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []orderItemWire `json:"items"`
}

type orderReply struct {
	ID flexID `json:"id"`
}

// CreateOrder submits an order. The backend locks prices and decrements
// stock atomically; a 409 means stock ran out in the meantime.
func (c *Client) CreateOrder(ctx context.Context, o shop.Order) (shop.Order, error) {
	payload := orderPayload{CompanyID: o.CompanyID, ShippingAddress: o.ShippingAddress, Items: make([]orderItemWire, 0, len(o.Items))}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, orderItemWire{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			PriceAtPurchase: json.Number(it.PriceAtPurchase.String()),
		})
	}
	var reply orderReply
	if err := c.do(ctx, call{op: "create order", method: http.MethodPost, path: "/api/orders", body: payload, out: &reply, protected: true}); err != nil {
		return shop.Order{}, err
	}
	o.ID = string(reply.ID)
	return o, nil
}
