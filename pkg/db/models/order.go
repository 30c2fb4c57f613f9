package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/poojakit/poojakit-backend/pkg/db/types"
	"github.com/poojakit/poojakit-backend/pkg/enums"
)

// Order is keyed by its public tracking id (ORD-XXXXXXXX). UserID is nil for
// guest checkouts. Items is an immutable snapshot captured at placement time.
type Order struct {
	ID        string             `gorm:"column:id;type:text;primaryKey"`
	UserID    *uuid.UUID         `gorm:"column:user_id;type:uuid"`
	Name      string             `gorm:"column:name;not null"`
	Phone     string             `gorm:"column:phone;not null"`
	Address   string             `gorm:"column:address;not null"`
	City      string             `gorm:"column:city"`
	Pin       string             `gorm:"column:pin"`
	Items     dbtypes.OrderItems `gorm:"column:items;type:jsonb;not null"`
	Total     int                `gorm:"column:total;not null"`
	Status    enums.OrderStatus  `gorm:"column:status;type:text;not null;default:pending"`
	ETA       *time.Time         `gorm:"column:eta"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
