package checkout

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/layali-lounge/qrmenu-backend/internal/cart"
	"github.com/layali-lounge/qrmenu-backend/internal/orders"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	dbpkg "github.com/layali-lounge/qrmenu-backend/pkg/db"
	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
	"github.com/layali-lounge/qrmenu-backend/pkg/metrics"
)

// TxRunner executes fn inside one database transaction, rolling back on error
// or panic.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result is what a successful checkout hands back to the caller.
type Result struct {
	Order *models.Order
	Lines []cart.Line
	Total int
}

// Service turns a visit's cart into the table's open order. Repeated
// checkouts for the same table keep updating that one order until staff
// closes it.
type Service struct {
	tx      TxRunner
	orders  *orders.Repository
	catalog cart.CatalogLookup
	logg    *logger.Logger
	metrics *metrics.OrderFlowMetrics
}

// NewService builds the checkout service.
func NewService(tx TxRunner, ordersRepo *orders.Repository, catalog cart.CatalogLookup, logg *logger.Logger, m *metrics.OrderFlowMetrics) *Service {
	return &Service{
		tx:      tx,
		orders:  ordersRepo,
		catalog: catalog,
		logg:    logg,
		metrics: m,
	}
}

// Checkout prices the visit's cart and writes it into the table's open order
// as one atomic transaction: find or create the open order, overwrite its
// header, and replace its item snapshots wholesale. The cart is deliberately
// left intact afterward so the table can re-check-out with adjustments until
// staff delivers or cancels.
func (s *Service) Checkout(ctx context.Context, visit *session.Visit, tableNo, note string) (*Result, error) {
	tableNo = strings.TrimSpace(tableNo)
	if tableNo == "" {
		tableNo = visit.TableNo()
	}

	lines, total, err := cart.Price(ctx, visit.Cart(), s.catalog)
	if err != nil {
		s.metrics.IncCheckout("failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
	}

	if dropped := visit.Cart().Len() - len(lines); dropped > 0 {
		s.metrics.AddDroppedRows(dropped)
		s.logg.Warn(s.logg.WithField(ctx, "dropped_rows", dropped), "cart rows no longer purchasable, skipped")
	}

	if len(lines) == 0 {
		s.metrics.IncCheckout("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithDetails(map[string]any{"reason": "empty_cart"})
	}
	if tableNo == "" {
		s.metrics.IncCheckout("rejected")
		// The total travels with the error so the cart view can redisplay
		// priced state without a second lookup.
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table number is required").
			WithDetails(map[string]any{"reason": "table_required", "total": total})
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		found, err := repo.FindLatestOpenOrder(ctx, tableNo)
		if err != nil {
			return err
		}
		if found == nil {
			order = &models.Order{TableNo: tableNo, Status: enums.OrderStatusNew}
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
		} else {
			order = found
			if order.Status.IsTerminal() {
				order.Status = enums.OrderStatusNew
			}
		}

		order.Note = strings.TrimSpace(note)
		order.TotalSYP = total
		if err := repo.Save(ctx, order); err != nil {
			return err
		}

		return repo.ReplaceItems(ctx, order.ID, snapshotItems(lines))
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			// A concurrent checkout for the same table won the race, either
			// on the open-order index or the items write.
			s.metrics.IncCheckout("rejected")
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "checkout already in progress for this table")
		}
		s.metrics.IncCheckout("failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout transaction failed")
	}

	visit.SetTableNo(tableNo)
	visit.MarkSubmitted()

	s.metrics.IncCheckout("success")
	s.logg.Info(s.logg.WithOrderID(s.logg.WithTableNo(ctx, tableNo), order.ID.String()), "checkout committed")

	return &Result{Order: order, Lines: lines, Total: total}, nil
}

// snapshotItems copies priced lines into order item rows. Exactly one of the
// product and offer references is set, according to the line's kind.
func snapshotItems(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.OrderItem{
			Kind:         line.Kind,
			ProductID:    line.ProductID,
			OfferID:      line.OfferID,
			NameSnapshot: line.Name,
			PriceSYPSnap: line.UnitPrice,
			Qty:          line.Qty,
			NoteSnapshot: line.Note,
			Position:     i,
		})
	}
	return items
}
