package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
)

// OrderItem is the point-in-time snapshot of one cart line. Name and price are
// copied from the catalog at checkout so the order stays accurate if the menu
// changes later. Exactly one of ProductID/OfferID is set, according to Kind;
// rows are only ever replaced wholesale, never patched.
type OrderItem struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID      `gorm:"column:order_id;type:uuid;not null;index"`
	Kind         enums.ItemKind `gorm:"column:kind;type:text;not null"`
	ProductID    *uuid.UUID     `gorm:"column:product_id;type:uuid"`
	OfferID      *uuid.UUID     `gorm:"column:offer_id;type:uuid"`
	NameSnapshot string         `gorm:"column:name_snapshot;not null"`
	PriceSYPSnap int            `gorm:"column:price_syp_snapshot;not null"`
	Qty          int            `gorm:"column:qty;not null;default:1"`
	NoteSnapshot string         `gorm:"column:note_snapshot;not null;default:''"`
	Position     int            `gorm:"column:position;not null;default:0"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// LineTotal returns the snapshot price multiplied by the quantity.
func (i OrderItem) LineTotal() int {
	return i.PriceSYPSnap * i.Qty
}
