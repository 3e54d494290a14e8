package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/api/responses"
	ordersrepo "github.com/layali-lounge/qrmenu-backend/internal/orders"
	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

type orderItemResponse struct {
	Kind         string `json:"kind"`
	ProductID    string `json:"product_id,omitempty"`
	OfferID      string `json:"offer_id,omitempty"`
	Name         string `json:"name"`
	UnitPriceSYP int    `json:"unit_price_syp"`
	Qty          int    `json:"qty"`
	Note         string `json:"note,omitempty"`
	LineTotalSYP int    `json:"line_total_syp"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	TableNo   string              `json:"table_no"`
	Status    string              `json:"status"`
	Note      string              `json:"note,omitempty"`
	TotalSYP  int                 `json:"total_syp"`
	Items     []orderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func newOrderResponse(order models.Order) orderResponse {
	out := orderResponse{
		ID:        order.ID.String(),
		TableNo:   order.TableNo,
		Status:    order.Status.String(),
		Note:      order.Note,
		TotalSYP:  order.TotalSYP,
		Items:     make([]orderItemResponse, 0, len(order.Items)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, item := range order.Items {
		resp := orderItemResponse{
			Kind:         item.Kind.String(),
			Name:         item.NameSnapshot,
			UnitPriceSYP: item.PriceSYPSnap,
			Qty:          item.Qty,
			Note:         item.NoteSnapshot,
			LineTotalSYP: item.LineTotal(),
		}
		if item.ProductID != nil {
			resp.ProductID = item.ProductID.String()
		}
		if item.OfferID != nil {
			resp.OfferID = item.OfferID.String()
		}
		out.Items = append(out.Items, resp)
	}
	return out
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

// OrderDetail serves one order with its snapshots. Status is pulled here on
// request; there is no push channel.
func OrderDetail(repo *ordersrepo.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}
