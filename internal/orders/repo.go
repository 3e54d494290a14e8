package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
)

// Repository persists orders and their item snapshots.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// openScope narrows a query to orders still counting toward a table's open
// slot.
func openScope(q *gorm.DB) *gorm.DB {
	return q.Where("status NOT IN ?", enums.TerminalOrderStatuses)
}

// FindLatestOpenOrder returns the newest non-terminal order for the table, or
// nil when the table has none. Inside a transaction on postgres the row is
// locked FOR UPDATE so concurrent checkouts for the same table serialize;
// sqlite has no row locks and skips the clause.
func (r *Repository) FindLatestOpenOrder(ctx context.Context, tableNo string) (*models.Order, error) {
	q := openScope(r.db.WithContext(ctx).Where("table_no = ?", tableNo)).
		Order("created_at DESC, id DESC")
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order models.Order
	err := q.First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists the order's header columns. Items are managed separately
// through ReplaceItems; gorm association writes are disabled here so a stale
// Items slice can never leak into the row set.
func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

// ReplaceItems swaps the order's item snapshots wholesale: delete everything,
// then bulk-insert the new rows. Partial patches are never supported.
func (r *Repository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return tx.Create(&items).Error
}

// FindByID loads an order with its item snapshots.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB {
			return q.Order("position ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// HasOpenOrder reports whether the table currently has a non-terminal order.
func (r *Repository) HasOpenOrder(ctx context.Context, tableNo string) (bool, error) {
	var count int64
	err := openScope(r.db.WithContext(ctx).Model(&models.Order{}).Where("table_no = ?", tableNo)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OpenOrdersDashboard returns each table's latest open order with items
// preloaded, newest submission first. Older open orders for the same table
// are superseded and excluded.
func (r *Repository) OpenOrdersDashboard(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := openScope(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Preload("Items", func(q *gorm.DB) *gorm.DB {
			return q.Order("position ASC")
		}).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(orders))
	latest := orders[:0]
	for _, order := range orders {
		if seen[order.TableNo] {
			continue
		}
		seen[order.TableNo] = true
		latest = append(latest, order)
	}
	return latest, nil
}

// UpdateStatus sets the order's status unconditionally. Staff may move an
// order in any direction, including reopening a terminal one.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
