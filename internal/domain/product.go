package domain

type Category struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Product is owned by the remote catalog. Discount and Stock are optional
// fields some views attach locally; the catalog itself never returns them.
type Product struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
	Discount    *int     `json:"discount,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// ProductInput is the payload accepted by the catalog for create and update.
type ProductInput struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	CategoryID  int64    `json:"categoryId,omitempty"`
	Category    Category `json:"category"`
	Stock       *int     `json:"stock,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

func (p Product) Input() ProductInput {
	return ProductInput{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Images:      append([]string(nil), p.Images...),
		CategoryID:  p.Category.ID,
		Category:    p.Category,
		Stock:       p.Stock,
	}
}
