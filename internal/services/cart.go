package services

import (
	"foodstore/internal/models"

	"github.com/shopspring/decimal"
)

// addOrIncrement bumps the quantity of an existing line or appends a new line with quantity 1.
func addOrIncrement(cart []models.CartLineItem, item models.CartLineItem) []models.CartLineItem {
	out := models.CloneItems(cart)
	for i := range out {
		if out[i].ProductID == item.ProductID {
			out[i].Quantity++
			return out
		}
	}
	item.Quantity = 1
	return append(out, item)
}

// setQuantity removes the line when quantity is 0 and overwrites it otherwise.
// Unknown products are left alone.
func setQuantity(cart []models.CartLineItem, productID string, quantity int) []models.CartLineItem {
	if quantity == 0 {
		return removeItem(cart, productID)
	}
	out := models.CloneItems(cart)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

func removeItem(cart []models.CartLineItem, productID string) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(cart))
	for _, item := range cart {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

// CartTotal is the sum of price × quantity, rounded to cents.
func CartTotal(items []models.CartLineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}
