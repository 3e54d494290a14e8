package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
)

// Order tracks one table's submission through fulfillment. A table may have
// many orders over time but at most one whose status is still open; a partial
// unique index on table_no backs that rule in the schema.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TableNo   string            `gorm:"column:table_no;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'new'"`
	Note      string            `gorm:"column:note;not null;default:''"`
	TotalSYP  int               `gorm:"column:total_syp;not null;default:0"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the order still counts toward the table's open slot.
func (o Order) IsOpen() bool {
	return !o.Status.IsTerminal()
}
