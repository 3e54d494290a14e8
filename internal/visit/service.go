package visit

import (
	"context"
	"strconv"
	"strings"

	"github.com/layali-lounge/qrmenu-backend/internal/session"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

// OpenOrderChecker is the one read the stale-cart rule needs from storage.
type OpenOrderChecker interface {
	HasOpenOrder(ctx context.Context, tableNo string) (bool, error)
}

// Service handles the per-request visit hygiene that runs before any cart or
// menu handler: capturing the table from the QR link and expiring carts whose
// order staff already closed.
type Service struct {
	orders OpenOrderChecker
	logg   *logger.Logger
}

// NewService builds the visit service.
func NewService(orders OpenOrderChecker, logg *logger.Logger) *Service {
	return &Service{orders: orders, logg: logg}
}

// CaptureTable records the table number carried on the QR link's query
// parameter. Blank values are ignored so plain navigation never drops an
// earlier scan.
func (s *Service) CaptureTable(ctx context.Context, visit *session.Visit, rawTable string) {
	rawTable = strings.TrimSpace(rawTable)
	if rawTable == "" {
		return
	}
	if visit.TableNo() != rawTable {
		s.logg.Info(s.logg.WithTableNo(ctx, rawTable), "table captured from qr link")
	}
	visit.SetTableNo(rawTable)
}

// ExpireStaleCart clears the cart when the visit already submitted an order
// and the table no longer has an open one: staff closed it out, so whatever
// the session still holds belongs to a finished sitting. Carts that never
// checked out are left alone.
func (s *Service) ExpireStaleCart(ctx context.Context, visit *session.Visit) error {
	if !visit.HasSubmittedOrder() {
		return nil
	}
	tableNo := visit.TableNo()
	if tableNo == "" {
		return nil
	}

	open, err := s.orders.HasOpenOrder(ctx, tableNo)
	if err != nil {
		return err
	}
	if open {
		return nil
	}

	visit.ClearCart()
	s.logg.Info(s.logg.WithTableNo(ctx, tableNo), "stale cart cleared after order close")
	return nil
}

// CoerceAddQty parses a raw quantity for add operations. Malformed input
// degrades to 1; the result is always in [1, max].
func CoerceAddQty(raw string, max int) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		qty = 1
	}
	if qty > max {
		qty = max
	}
	return qty
}

// CoerceSetQty parses a raw quantity for set operations, where zero is a
// legitimate "remove this row" value. Malformed input degrades to 1; the
// result is always in [0, max].
func CoerceSetQty(raw string, max int) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		qty = 1
	}
	return ClampQty(qty, max)
}

// CoerceDelta parses a raw signed quantity adjustment. Malformed input
// degrades to 0, leaving the row untouched.
func CoerceDelta(raw string) int {
	delta, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return delta
}

// ClampQty bounds a computed quantity to [0, max].
func ClampQty(qty, max int) int {
	if qty < 0 {
		return 0
	}
	if qty > max {
		return max
	}
	return qty
}
