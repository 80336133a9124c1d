package domain

// OrderItem is a cart line joined with its product at checkout time.
type OrderItem struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Size            string  `json:"size"`
	DiscountedPrice float64 `json:"discountedPrice"`
	Quantity        int     `json:"quantity"`
}

// Order is submitted to POST /place-order/orders/{userId}. It is not kept
// locally after submission.
type Order struct {
	Items     []OrderItem `json:"items"`
	OrderDate string      `json:"orderDate"`
	Total     float64     `json:"total"`
}

// PlacedOrder is an entry of the remote order history.
type PlacedOrder struct {
	ID        string      `json:"_id"`
	Items     []OrderItem `json:"items"`
	OrderDate string      `json:"orderDate"`
	Total     float64     `json:"total"`
}
