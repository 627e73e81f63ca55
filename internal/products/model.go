package products

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

const (
	EventsQueue  = "products.events"
	EventCreated = "product_created"
	EventUpdated = "product_updated"
	EventDeleted = "product_deleted"
)

type Product struct {
	ID          int64           `json:"id" example:"1"`
	Name        string          `json:"name" example:"Test Product"`
	Description *string         `json:"description" example:"Test Description"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"19.99"`
}

// Input is the candidate payload of a create or update request. Price is a
// pointer so that a missing price can be told apart from zero.
type Input struct {
	Name        string           `json:"name" validate:"notblank,max=100" example:"Test Product"`
	Description *string          `json:"description" validate:"omitempty,max=500" example:"Test Description"`
	Price       *decimal.Decimal `json:"price" validate:"required,positive" swaggertype:"string" example:"19.99"`
}

// ApplyTo overwrites name, description and price of p with the input values.
// The id of p is kept. The input must have passed Validate.
func (in Input) ApplyTo(p Product) Product {
	p.Name = in.Name
	p.Description = in.Description
	if in.Price != nil {
		p.Price = *in.Price
	}
	return p
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     string    `json:"price,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType string, p Product, at time.Time) ProductEvent {
	event := ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Timestamp: at.UTC(),
	}
	if eventType != EventDeleted {
		event.Price = p.Price.String()
	}
	return event
}
