package cart

import "github.com/shopkart-labs/shopkart-backend/pkg/db/models"

// Pricing is computed fresh on every read. Nothing here is persisted: catalog
// or coupon changes are reflected the next time the cart is loaded.

// ItemUnitPrice returns the per-unit price of a line in paise: the product's
// base price plus the surcharges of the selected variants. A line whose
// product has been removed from the catalog prices at zero.
func ItemUnitPrice(item *models.CartItem) int64 {
	if item == nil || item.Product == nil {
		return 0
	}
	price := item.Product.PricePaise
	if item.SizeVariant != nil {
		price += item.SizeVariant.SurchargePaise
	}
	if item.ColorVariant != nil {
		price += item.ColorVariant.SurchargePaise
	}
	return price
}

// ItemLinePrice returns the line total: unit price times quantity.
func ItemLinePrice(item *models.CartItem) int64 {
	if item == nil || item.Quantity <= 0 {
		return 0
	}
	return ItemUnitPrice(item) * int64(item.Quantity)
}

// Subtotal sums the line totals of all items in the cart.
func Subtotal(cart *models.Cart) int64 {
	if cart == nil {
		return 0
	}
	var sum int64
	for i := range cart.Items {
		sum += ItemLinePrice(&cart.Items[i])
	}
	return sum
}

// CouponApplicable reports whether the attached coupon currently yields a
// discount: not expired and the subtotal meets the minimum. A coupon below
// the minimum stays attached but contributes nothing.
func CouponApplicable(coupon *models.Coupon, subtotal int64) bool {
	if coupon == nil || coupon.IsExpired {
		return false
	}
	return subtotal >= coupon.MinimumAmountPaise
}

// DiscountAmount returns the flat discount the coupon contributes against
// the subtotal, zero when not applicable.
func DiscountAmount(coupon *models.Coupon, subtotal int64) int64 {
	if !CouponApplicable(coupon, subtotal) {
		return 0
	}
	return coupon.DiscountPaise
}

// Total returns the payable amount: subtotal minus discount, clamped at zero.
func Total(cart *models.Cart) int64 {
	subtotal := Subtotal(cart)
	var discount int64
	if cart != nil {
		discount = DiscountAmount(cart.Coupon, subtotal)
	}
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}

// ItemCount sums the quantities of all lines in the cart.
func ItemCount(cart *models.Cart) int {
	if cart == nil {
		return 0
	}
	var count int
	for i := range cart.Items {
		count += cart.Items[i].Quantity
	}
	return count
}
