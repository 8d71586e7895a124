package model

import "time"

// Order represents a row in a restaurant schema's `orders` table.  The
// gate only creates and lists orders to prove the pipeline end to end;
// pricing, fulfilment and payment live outside this service.
type Order struct {
	ID                  uint64    // orders.id
	TableCode           string    // orders.table_code
	CustomerName        string    // orders.customer_name
	SpecialInstructions string    // orders.special_instructions
	Status              string    // orders.status (OPEN, SERVED, SETTLED)
	CreatedAt           time.Time // orders.created_at
	UpdatedAt           time.Time // orders.updated_at
}
