package controllers

import (
	"net/http"

	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/api/validators"
	staffsvc "github.com/layali-lounge/qrmenu-backend/internal/staff"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

// StaffDashboard lists each table's latest open order, newest first.
func StaffDashboard(svc *staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			payload = append(payload, newOrderResponse(order))
		}
		responses.WriteSuccess(w, payload)
	}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StaffSetStatus moves an order to the requested status.
func StaffSetStatus(svc *staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		if err := svc.SetStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": id.String(), "status": status.String()})
	}
}

// StaffMarkDelivered closes out a table with one tap.
func StaffMarkDelivered(svc *staffsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkDelivered(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": id.String(), "status": enums.OrderStatusDelivered.String()})
	}
}
