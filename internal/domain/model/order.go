package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an aggregate of line items placed on behalf of an owner.
// ID, Version and the timestamps are assigned by the store on insert.
type Order struct {
	ID        uuid.UUID  `json:"id"`
	Version   *int       `json:"version,omitempty"`
	Date      Date       `json:"date"`
	OwnerID   string     `json:"ownerId" validate:"required"`
	LineItems []LineItem `json:"lineItems" validate:"required,min=1,dive"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`

	// OwnerDisplayName is filled on every read from the owner service and never stored.
	// Enriched tells an empty last name apart from an order that was not looked up.
	OwnerDisplayName string `json:"-"`
	Enriched         bool   `json:"-"`
}

// LineItem is a single article position inside an order.
type LineItem struct {
	ArticleID string          `json:"articleId" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
}

// Enrich sets the display name from owner.
func (o *Order) Enrich(owner Owner) {
	o.OwnerDisplayName = owner.LastName
	o.Enriched = true
}

// ClearEnrichment drops derived owner data before the order is stored.
func (o *Order) ClearEnrichment() {
	o.OwnerDisplayName = ""
	o.Enriched = false
}

// HasVersion reports whether the order has been persisted at least once.
func (o Order) HasVersion() bool {
	return o.Version != nil
}

// CurrentVersion returns the persisted version or -1 for transient orders.
func (o Order) CurrentVersion() int {
	if o.Version == nil {
		return -1
	}
	return *o.Version
}
