package domain

// CartLine is one product+size entry in the cart. The product id is
// serialised as "id" to stay compatible with carts already persisted on
// devices and with the remote cart endpoint.
type CartLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
}

// Matches reports whether the line has the (productID, size) key.
func (l CartLine) Matches(productID, size string) bool {
	return l.ProductID == productID && l.Size == size
}

// RemoteCart is the payload of GET /cartState/cart/{userId}.
type RemoteCart struct {
	UserID string     `json:"userId,omitempty"`
	Items  []CartLine `json:"items"`
}

// SaveCartRequest is the payload of POST /cartState/cart/save.
type SaveCartRequest struct {
	UserID string     `json:"userId"`
	Items  []CartLine `json:"items"`
}

// CloneLines returns a copy that never aliases the input and is never nil,
// so an empty cart always encodes as [].
func CloneLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
