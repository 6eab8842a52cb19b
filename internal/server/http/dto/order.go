package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/HannahHaeusler/labor/internal/domain/model"
)

// LineItem is the wire form of an order position.
type LineItem struct {
	ArticleID string          `json:"articleId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// OrderRequest carries the client-writable fields of an order.
type OrderRequest struct {
	Date      model.Date `json:"date"`
	OwnerID   string     `json:"ownerId"`
	LineItems []LineItem `json:"lineItems"`
}

// OrderResponse is an order as returned to clients.
type OrderResponse struct {
	ID               uuid.UUID  `json:"id"`
	Version          int        `json:"version"`
	Date             model.Date `json:"date"`
	OwnerID          string     `json:"ownerId"`
	OwnerDisplayName *string    `json:"ownerDisplayName"`
	LineItems        []LineItem `json:"lineItems"`
}

// Violation describes one failed constraint of a create request.
type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

// ToOrder converts the request into a transient order.
func (r OrderRequest) ToOrder() model.Order {
	var items []model.LineItem
	if r.LineItems != nil {
		items = make([]model.LineItem, 0, len(r.LineItems))
		for _, item := range r.LineItems {
			items = append(items, model.LineItem{
				ArticleID: item.ArticleID,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}
	}
	return model.Order{
		Date:      r.Date,
		OwnerID:   r.OwnerID,
		LineItems: items,
	}
}

// FromOrder builds the response body for order.
func FromOrder(order model.Order) OrderResponse {
	items := make([]LineItem, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		items = append(items, LineItem{
			ArticleID: item.ArticleID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	var ownerName *string
	if order.Enriched {
		name := order.OwnerDisplayName
		ownerName = &name
	}

	return OrderResponse{
		ID:               order.ID,
		Version:          order.CurrentVersion(),
		Date:             order.Date,
		OwnerID:          order.OwnerID,
		OwnerDisplayName: ownerName,
		LineItems:        items,
	}
}

// FromViolations keeps the order of violations.
func FromViolations(violations []model.Violation) []Violation {
	out := make([]Violation, 0, len(violations))
	for _, v := range violations {
		out = append(out, Violation{Property: v.Property, Message: v.Message})
	}
	return out
}
