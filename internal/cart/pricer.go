package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	"github.com/layali-lounge/qrmenu-backend/pkg/enums"
)

// CatalogLookup is the read-only catalog surface the pricer resolves against.
// Both fetches silently omit unknown or inactive ids.
type CatalogLookup interface {
	FetchActiveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	FetchActiveOffers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Offer, error)
}

// Line is one priced cart row. Derived on every read, never stored: the unit
// price and name always come fresh from the catalog, not from the session.
type Line struct {
	Key       Key
	Kind      enums.ItemKind
	ProductID *uuid.UUID
	OfferID   *uuid.UUID
	Name      string
	UnitPrice int
	Qty       int
	Note      string
}

// LineTotal returns UnitPrice * Qty.
func (l Line) LineTotal() int {
	return l.UnitPrice * l.Qty
}

// Price resolves the cart against the catalog into priced lines and a grand
// total. One batched lookup per kind; rows whose catalog item is missing or
// inactive are skipped, not errors. Output order follows the cart's insertion
// order. Read-only and safe to call repeatedly for previews.
func Price(ctx context.Context, c *Cart, lookup CatalogLookup) ([]Line, int, error) {
	if c == nil || c.IsEmpty() {
		return nil, 0, nil
	}

	var productIDs, offerIDs []uuid.UUID
	for _, key := range c.keys {
		switch key.Kind {
		case enums.ItemKindProduct:
			productIDs = append(productIDs, key.ID)
		case enums.ItemKindOffer:
			offerIDs = append(offerIDs, key.ID)
		}
	}

	var (
		products map[uuid.UUID]models.Product
		offers   map[uuid.UUID]models.Offer
		err      error
	)
	if len(productIDs) > 0 {
		if products, err = lookup.FetchActiveProducts(ctx, productIDs); err != nil {
			return nil, 0, err
		}
	}
	if len(offerIDs) > 0 {
		if offers, err = lookup.FetchActiveOffers(ctx, offerIDs); err != nil {
			return nil, 0, err
		}
	}

	lines := make([]Line, 0, len(c.keys))
	total := 0
	for _, key := range c.keys {
		row := c.rows[key]
		var line Line
		switch key.Kind {
		case enums.ItemKindProduct:
			product, ok := products[key.ID]
			if !ok {
				continue
			}
			id := product.ID
			line = Line{
				Key:       key,
				Kind:      enums.ItemKindProduct,
				ProductID: &id,
				Name:      product.Name,
				UnitPrice: product.PriceSYP,
				Qty:       row.Qty,
				Note:      row.Note,
			}
		case enums.ItemKindOffer:
			offer, ok := offers[key.ID]
			if !ok {
				continue
			}
			id := offer.ID
			line = Line{
				Key:       key,
				Kind:      enums.ItemKindOffer,
				OfferID:   &id,
				Name:      offer.Title,
				UnitPrice: offer.PriceSYP,
				Qty:       row.Qty,
				Note:      row.Note,
			}
		default:
			continue
		}
		lines = append(lines, line)
		total += line.LineTotal()
	}

	return lines, total, nil
}
