package orders

import "time"

// Order statuses relevant to the fact inclusion predicate. Orders are landed
// and transitioned by the external channel sync jobs; this package only
// reads them.
const StatusCancelled = "cancelled"

// Order carries the dimensions of one landed channel order.
type Order struct {
	ID            int64     `json:"id" db:"id"`
	Channel       string    `json:"channel" db:"channel"`
	Customer      string    `json:"customer" db:"customer"`
	OrderDate     time.Time `json:"order_date" db:"order_date"`
	InvoiceStatus string    `json:"invoice_status" db:"invoice_status"`
	Status        string    `json:"status" db:"status"`
}

// LineItem is one landed order line, immutable once ingested.
type LineItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"order_id" db:"order_id"`
	ProductSKU  string  `json:"product_sku" db:"product_sku"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	Subtotal    float64 `json:"subtotal" db:"subtotal"`
	Total       float64 `json:"total" db:"total"`
	TaxAmount   float64 `json:"tax_amount" db:"tax_amount"`
}

// SourceLine joins a line item with its order dimensions, the unit the
// materializer consumes.
type SourceLine struct {
	LineItem
	Channel       string    `json:"channel" db:"channel"`
	Customer      string    `json:"customer" db:"customer"`
	OrderDate     time.Time `json:"order_date" db:"order_date"`
	InvoiceStatus string    `json:"invoice_status" db:"invoice_status"`
	OrderStatus   string    `json:"order_status" db:"order_status"`
}
