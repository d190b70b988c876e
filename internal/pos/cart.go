// Package pos: state keranjang sisi client (POS/storefront). Murni
// in-memory; stok hanya dicek terhadap snapshot produk terakhir — validasi
// sebenarnya tetap terjadi saat bayar.
package pos

import (
	"sort"

	"aurashop/internal/apperr"
	"aurashop/internal/inventory"
	"aurashop/internal/orders"
)

type Line struct {
	Product  inventory.Product
	Quantity int
}

type Cart struct {
	lines map[string]*Line // key = product id
}

func NewCart() *Cart {
	return &Cart{lines: map[string]*Line{}}
}

// Add menambah qty item (merge kalau produk sudah ada di keranjang).
func (c *Cart) Add(p inventory.Product, qty int) error {
	if qty <= 0 {
		return apperr.Invalid("quantity harus > 0")
	}
	cur := 0
	if l, ok := c.lines[p.ID]; ok {
		cur = l.Quantity
	}
	if cur+qty > p.Stock {
		return apperr.Newf(apperr.KindConflict, "stok %s tidak cukup (tersisa %d)", p.Name, p.Stock)
	}
	if l, ok := c.lines[p.ID]; ok {
		l.Quantity += qty
		l.Product = p // refresh snapshot
		return nil
	}
	c.lines[p.ID] = &Line{Product: p, Quantity: qty}
	return nil
}

func (c *Cart) SetQuantity(productID string, qty int) error {
	l, ok := c.lines[productID]
	if !ok {
		return apperr.NotFound("produk tidak ada di keranjang")
	}
	if qty <= 0 {
		delete(c.lines, productID)
		return nil
	}
	if qty > l.Product.Stock {
		return apperr.Newf(apperr.KindConflict, "stok %s tidak cukup (tersisa %d)", l.Product.Name, l.Product.Stock)
	}
	l.Quantity = qty
	return nil
}

func (c *Cart) Remove(productID string) { delete(c.lines, productID) }

func (c *Cart) Clear() { c.lines = map[string]*Line{} }

func (c *Cart) Len() int { return len(c.lines) }

// Lines mengembalikan isi keranjang terurut by product id (deterministik).
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out
}

func (c *Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Product.PriceCents * int64(l.Quantity)
	}
	return total
}

// ToOrderItems: bentuk yang dikirim ke POST /api/orders.
func (c *Cart) ToOrderItems() []orders.ItemInput {
	lines := c.Lines()
	out := make([]orders.ItemInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.ItemInput{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return out
}
