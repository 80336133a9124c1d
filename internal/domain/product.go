package domain

// Product is the remote catalogue record. The core only reads it.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Sale        float64  `json:"sale,omitempty"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Sizes       []string `json:"size,omitempty"`
}

// ProductMap indexes fetched products by id.
type ProductMap map[string]Product

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Subcategory struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
