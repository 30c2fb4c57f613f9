package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/poojakit/poojakit-backend/pkg/db/models"
	dbtypes "github.com/poojakit/poojakit-backend/pkg/db/types"
	"github.com/poojakit/poojakit-backend/pkg/enums"
)

// ItemInput mirrors the cart entries the browser submits: full product
// objects for catalog items, or free-form {title, price} pairs. Cart contents
// live in browser storage and are untrusted; the service re-derives the total
// and cross-checks catalog prices.
type ItemInput struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title" validate:"required"`
	Price int    `json:"price" validate:"gte=0"`
	Qty   int    `json:"qty,omitempty" validate:"gte=0"`
}

// PlaceOrderRequest carries the fields accepted by POST /api/order. ETA is
// epoch milliseconds, matching what the storefront client has always sent.
type PlaceOrderRequest struct {
	Name    string      `json:"name" validate:"required"`
	Phone   string      `json:"phone" validate:"required"`
	Address string      `json:"address" validate:"required"`
	City    string      `json:"city,omitempty"`
	Pin     string      `json:"pin,omitempty"`
	Items   []ItemInput `json:"items" validate:"required,min=1,dive"`
	Total   int         `json:"total"`
	ETA     *int64      `json:"eta,omitempty"`
	// UserToken is the legacy way for the client to attach the order to an
	// account; the cookie or bearer header works too.
	UserToken string `json:"userToken,omitempty"`
}

// UpdateStatusRequest carries the admin status mutation body.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PlacedResponse is returned from a successful order placement.
type PlacedResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// OrderDTO is the transport shape for tracking and admin listings.
type OrderDTO struct {
	ID        string             `json:"id"`
	UserID    *uuid.UUID         `json:"user_id,omitempty"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	City      string             `json:"city"`
	Pin       string             `json:"pin"`
	Items     dbtypes.OrderItems `json:"items"`
	Total     int                `json:"total"`
	Status    enums.OrderStatus  `json:"status"`
	ETA       *time.Time         `json:"eta,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := o.Items
	if items == nil {
		items = dbtypes.OrderItems{}
	}
	return &OrderDTO{
		ID:        o.ID,
		UserID:    o.UserID,
		Name:      o.Name,
		Phone:     o.Phone,
		Address:   o.Address,
		City:      o.City,
		Pin:       o.Pin,
		Items:     items,
		Total:     o.Total,
		Status:    o.Status,
		ETA:       o.ETA,
		CreatedAt: o.CreatedAt,
	}
}

func fromModels(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *FromModel(&orders[i]))
	}
	return out
}
