package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/api/middleware"
	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/api/validators"
	cartpkg "github.com/layali-lounge/qrmenu-backend/internal/cart"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	visitsvc "github.com/layali-lounge/qrmenu-backend/internal/visit"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

type cartLineResponse struct {
	Key          string `json:"key"`
	Kind         string `json:"kind"`
	ProductID    string `json:"product_id,omitempty"`
	OfferID      string `json:"offer_id,omitempty"`
	Name         string `json:"name"`
	UnitPriceSYP int    `json:"unit_price_syp"`
	Qty          int    `json:"qty"`
	Note         string `json:"note,omitempty"`
	LineTotalSYP int    `json:"line_total_syp"`
}

type cartResponse struct {
	Lines             []cartLineResponse `json:"lines"`
	TotalSYP          int                `json:"total_syp"`
	ItemCount         int                `json:"item_count"`
	TableNo           string             `json:"table_no,omitempty"`
	HasSubmittedOrder bool               `json:"has_submitted_order"`
}

func newCartResponse(v *session.Visit, lines []cartpkg.Line, total int) cartResponse {
	out := cartResponse{
		Lines:             make([]cartLineResponse, 0, len(lines)),
		TotalSYP:          total,
		ItemCount:         v.Cart().ItemCount(),
		TableNo:           v.TableNo(),
		HasSubmittedOrder: v.HasSubmittedOrder(),
	}
	for _, line := range lines {
		resp := cartLineResponse{
			Key:          line.Key.String(),
			Kind:         line.Kind.String(),
			Name:         line.Name,
			UnitPriceSYP: line.UnitPrice,
			Qty:          line.Qty,
			Note:         line.Note,
			LineTotalSYP: line.LineTotal(),
		}
		if line.ProductID != nil {
			resp.ProductID = line.ProductID.String()
		}
		if line.OfferID != nil {
			resp.OfferID = line.OfferID.String()
		}
		out.Lines = append(out.Lines, resp)
	}
	return out
}

func writePricedCart(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, v *session.Visit, lookup cartpkg.CatalogLookup) {
	lines, total, err := cartpkg.Price(ctx, v.Cart(), lookup)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart"))
		return
	}
	responses.WriteSuccess(w, newCartResponse(v, lines, total))
}

// CartView renders the priced cart. Pricing runs fresh against the catalog on
// every view, so price changes and deactivated items show up immediately.
func CartView(lookup cartpkg.CatalogLookup, visitService *visitsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		if err := visitService.ExpireStaleCart(ctx, v); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		writePricedCart(ctx, logg, w, v, lookup)
	}
}

type addItemRequest struct {
	Kind   string          `json:"kind" validate:"required"`
	ID     uuid.UUID       `json:"id" validate:"required"`
	Qty    json.RawMessage `json:"qty,omitempty"`
	Note   string          `json:"note,omitempty"`
	Drink  string          `json:"drink,omitempty"`
	Shisha string          `json:"shisha,omitempty"`
}

// composeOfferNote folds the offer customization choices into the single
// note string the cart row carries, labelled the way the kitchen reads them.
func composeOfferNote(drink, shisha, note string) string {
	parts := []string{}
	if drink = strings.TrimSpace(drink); drink != "" {
		parts = append(parts, "مشروب: "+drink)
	}
	if shisha = strings.TrimSpace(shisha); shisha != "" {
		parts = append(parts, "أركيلة: "+shisha)
	}
	if note = strings.TrimSpace(note); note != "" {
		parts = append(parts, "ملاحظة: "+note)
	}
	return strings.Join(parts, " | ")
}

// CartAddItem upserts one row: quantity accumulates, note overwrites only
// when non-empty. Malformed quantities degrade to 1 instead of failing.
func CartAddItem(lookup cartpkg.CatalogLookup, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		kind, err := enums.ParseItemKind(payload.Kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item kind"))
			return
		}

		key := cartpkg.ProductKey(payload.ID)
		note := payload.Note
		if kind == enums.ItemKindOffer {
			key = cartpkg.OfferKey(payload.ID)
			note = composeOfferNote(payload.Drink, payload.Shisha, payload.Note)
		}

		qty := visitsvc.CoerceAddQty(validators.RawQty(payload.Qty), cfg.MaxQtyPerLine)
		v.AddItem(key, qty, validators.SanitizeString(note, cartpkg.MaxNoteLen))

		writePricedCart(ctx, logg, w, v, lookup)
	}
}

type updateQtyRequest struct {
	Key   string          `json:"key" validate:"required"`
	Qty   json.RawMessage `json:"qty,omitempty"`
	Delta json.RawMessage `json:"delta,omitempty"`
}

// CartUpdateQty sets one row's quantity; zero removes the row. When delta is
// present it adjusts the current quantity instead, so the +/- stepper buttons
// need no client-side state.
func CartUpdateQty(lookup cartpkg.CatalogLookup, cfg config.CartConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		var payload updateQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key, err := cartpkg.ParseKey(payload.Key)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart key"))
			return
		}

		if len(payload.Delta) > 0 {
			delta := visitsvc.CoerceDelta(validators.RawQty(payload.Delta))
			v.SetQuantity(key, visitsvc.ClampQty(v.Cart().Quantity(key)+delta, cfg.MaxQtyPerLine))
		} else {
			v.SetQuantity(key, visitsvc.CoerceSetQty(validators.RawQty(payload.Qty), cfg.MaxQtyPerLine))
		}

		writePricedCart(ctx, logg, w, v, lookup)
	}
}

type removeItemRequest struct {
	Key string `json:"key" validate:"required"`
}

// CartRemoveItem deletes one row unconditionally.
func CartRemoveItem(lookup cartpkg.CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		var payload removeItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		key, err := cartpkg.ParseKey(payload.Key)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart key"))
			return
		}

		v.RemoveItem(key)

		writePricedCart(ctx, logg, w, v, lookup)
	}
}

// CartClear empties the cart and resets the submitted marker.
func CartClear(lookup cartpkg.CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		v.ClearCart()

		writePricedCart(ctx, logg, w, v, lookup)
	}
}

type setTableRequest struct {
	TableNo string `json:"table_no" validate:"required"`
}

// CartSetTable records the table number manually, for visitors who reached
// the menu without scanning.
func CartSetTable(lookup cartpkg.CatalogLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		var payload setTableRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		v.SetTableNo(validators.SanitizeString(payload.TableNo, 32))

		writePricedCart(ctx, logg, w, v, lookup)
	}
}
