package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer is a bundled deal shown alongside the menu (drink + shisha combos and
// the like). Customizations travel as a free-text note on the cart row.
type Offer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Subtitle  string    `gorm:"column:subtitle;not null;default:''"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	PriceSYP  int       `gorm:"column:price_syp;not null"`
	ImageURL  *string   `gorm:"column:image_url"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
