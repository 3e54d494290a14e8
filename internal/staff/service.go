package staff

import (
	"context"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/internal/orders"
	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
	"github.com/layali-lounge/qrmenu-backend/pkg/metrics"
)

// Service is the staff-side surface: the open-orders dashboard and status
// moves. Transitions are unconditional; staff may push an order into any
// state, including reopening a terminal one, and the open-order rule sorts
// itself out on the next checkout.
type Service struct {
	orders  *orders.Repository
	logg    *logger.Logger
	metrics *metrics.OrderFlowMetrics
}

// NewService builds the staff service.
func NewService(ordersRepo *orders.Repository, logg *logger.Logger, m *metrics.OrderFlowMetrics) *Service {
	return &Service{orders: ordersRepo, logg: logg, metrics: m}
}

// Dashboard returns each table's latest open order with items, newest first.
func (s *Service) Dashboard(ctx context.Context) ([]models.Order, error) {
	return s.orders.OpenOrdersDashboard(ctx)
}

// SetStatus moves the order to the given status.
func (s *Service) SetStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.metrics.IncTransition(status.String())
	s.logg.Info(s.logg.WithField(s.logg.WithOrderID(ctx, orderID.String()), "status", status.String()), "order status updated")
	return nil
}

// MarkDelivered is the one-tap shortcut for closing out a table.
func (s *Service) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	return s.SetStatus(ctx, orderID, enums.OrderStatusDelivered)
}
