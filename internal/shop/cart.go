package shop

import (
	"github.com/shopspring/decimal"
)

// Quantity returns how many units of productID the cart holds.
func (c Cart) Quantity(productID string) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// Add puts qty units of product in the cart, merging with an existing line.
// It fails with *StockError when the cart would hold more than the stock.
func (c Cart) Add(p Product, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}
	if c.Quantity(p.ID)+qty > p.StockQuantity {
		return c, &StockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity}
	}
	lines := c.clone()
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity += qty
			lines[i].UnitPrice = p.Price
			return Cart{Lines: lines}, nil
		}
	}
	lines = append(lines, CartLine{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: qty})
	return Cart{Lines: lines}, nil
}

// SetQuantity replaces the quantity of product. qty below one removes the
// line; qty above the stock fails with *StockError.
func (c Cart) SetQuantity(p Product, qty int) (Cart, error) {
	if qty < 1 {
		return c.Remove(p.ID), nil
	}
	if qty > p.StockQuantity {
		return c, &StockError{ProductID: p.ID, Name: p.Name, Available: p.StockQuantity}
	}
	lines := c.clone()
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity = qty
			lines[i].UnitPrice = p.Price
			return Cart{Lines: lines}, nil
		}
	}
	return c, ErrNotInCart
}

// Remove drops the line of productID, if any.
func (c Cart) Remove(productID string) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

// Total is the sum of quantity times unit price over all lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Unavailable returns the lines that catalog can no longer serve: products
// gone from the catalog or with less stock than the line quantity.
func (c Cart) Unavailable(catalog Catalog) []UnavailableLine {
	var out []UnavailableLine
	for _, l := range c.Lines {
		p, ok := catalog.Find(l.ProductID)
		if !ok {
			out = append(out, UnavailableLine{ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity, Removed: true})
			continue
		}
		if l.Quantity > p.StockQuantity {
			out = append(out, UnavailableLine{ProductID: l.ProductID, Name: l.Name, Requested: l.Quantity, Available: p.StockQuantity})
		}
	}
	return out
}

// Reprice refreshes line names and unit prices from catalog.
func (c Cart) Reprice(catalog Catalog) Cart {
	lines := c.clone()
	for i := range lines {
		if p, ok := catalog.Find(lines[i].ProductID); ok {
			lines[i].Name = p.Name
			lines[i].UnitPrice = p.Price
		}
	}
	return Cart{Lines: lines}
}

// Order builds the order snapshot submitted at checkout.
func (c Cart) Order(companyID string, customer CustomerInfo) Order {
	items := make([]OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, OrderItem{ProductID: l.ProductID, Quantity: l.Quantity, PriceAtPurchase: l.UnitPrice})
	}
	return Order{CompanyID: companyID, ShippingAddress: customer.Address, Items: items}
}

func (c Cart) clone() []CartLine {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return lines
}
