package controllers

import (
	"net/http"

	"github.com/layali-lounge/qrmenu-backend/api/middleware"
	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/api/validators"
	cartpkg "github.com/layali-lounge/qrmenu-backend/internal/cart"
	checkoutsvc "github.com/layali-lounge/qrmenu-backend/internal/checkout"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

type checkoutRequest struct {
	TableNo string `json:"table_no,omitempty"`
	Note    string `json:"note,omitempty"`
}

type checkoutResponse struct {
	OrderID  string             `json:"order_id"`
	TableNo  string             `json:"table_no"`
	Status   string             `json:"status"`
	TotalSYP int                `json:"total_syp"`
	Lines    []cartLineResponse `json:"lines"`
}

// Checkout submits the cart as the table's open order. An empty body is
// accepted: the table number falls back to the one captured from the QR scan.
func Checkout(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		var payload checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		result, err := svc.Checkout(ctx, v,
			validators.SanitizeString(payload.TableNo, 32),
			validators.SanitizeString(payload.Note, cartpkg.MaxNoteLen))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := checkoutResponse{
			OrderID:  result.Order.ID.String(),
			TableNo:  result.Order.TableNo,
			Status:   result.Order.Status.String(),
			TotalSYP: result.Total,
			Lines:    newCartResponse(v, result.Lines, result.Total).Lines,
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}
