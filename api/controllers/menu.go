package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/layali-lounge/qrmenu-backend/api/middleware"
	"github.com/layali-lounge/qrmenu-backend/api/responses"
	"github.com/layali-lounge/qrmenu-backend/internal/catalog"
	"github.com/layali-lounge/qrmenu-backend/internal/visit"
	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	"github.com/layali-lounge/qrmenu-backend/pkg/logger"
)

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	PriceSYP    int     `json:"price_syp"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsFeatured  bool    `json:"is_featured"`
	Category    string  `json:"category,omitempty"`
}

type offerResponse struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Slug     string  `json:"slug"`
	PriceSYP int     `json:"price_syp"`
	ImageURL *string `json:"image_url,omitempty"`
}

type menuResponse struct {
	Categories []categoryResponse `json:"categories"`
	Products   []productResponse  `json:"products"`
	Offers     []offerResponse    `json:"offers"`
	TableNo    string             `json:"table_no,omitempty"`
	CartCount  int                `json:"cart_count"`
}

func newProductResponse(p models.Product) productResponse {
	out := productResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		PriceSYP:    p.PriceSYP,
		ImageURL:    p.ImageURL,
		IsFeatured:  p.IsFeatured,
	}
	if p.Category != nil {
		out.Category = p.Category.Slug
	}
	return out
}

func newOfferResponse(o models.Offer) offerResponse {
	return offerResponse{
		ID:       o.ID.String(),
		Title:    o.Title,
		Subtitle: o.Subtitle,
		Slug:     o.Slug,
		PriceSYP: o.PriceSYP,
		ImageURL: o.ImageURL,
	}
}

// Menu serves the browse view. The QR code points here with ?t=<table>, so
// this handler also captures the table and runs the stale-cart check before
// rendering anything.
func Menu(catalogRepo *catalog.Repository, visitSvc *visit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		visitSvc.CaptureTable(ctx, v, r.URL.Query().Get("t"))
		if err := visitSvc.ExpireStaleCart(ctx, v); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		categories, err := catalogRepo.ActiveCategories(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query := r.URL.Query()
		categorySlug := query.Get("cat")
		if categorySlug == "all" {
			categorySlug = ""
		}
		products, err := catalogRepo.ListProducts(ctx, catalog.ListFilters{
			CategorySlug: categorySlug,
			Query:        query.Get("q"),
			FeaturedOnly: query.Get("featured") == "true",
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offers, err := catalogRepo.ActiveOffers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payload := menuResponse{
			Categories: make([]categoryResponse, 0, len(categories)),
			Products:   make([]productResponse, 0, len(products)),
			Offers:     make([]offerResponse, 0, len(offers)),
			TableNo:    v.TableNo(),
			CartCount:  v.Cart().ItemCount(),
		}
		for _, c := range categories {
			payload.Categories = append(payload.Categories, categoryResponse{ID: c.ID.String(), Name: c.Name, Slug: c.Slug})
		}
		for _, p := range products {
			payload.Products = append(payload.Products, newProductResponse(p))
		}
		for _, o := range offers {
			payload.Offers = append(payload.Offers, newOfferResponse(o))
		}

		responses.WriteSuccess(w, payload)
	}
}

// MenuProduct serves one product's detail view.
func MenuProduct(catalogRepo *catalog.Repository, visitSvc *visit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		visitSvc.CaptureTable(ctx, v, r.URL.Query().Get("t"))
		if err := visitSvc.ExpireStaleCart(ctx, v); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := catalogRepo.FindProductBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// MenuOffer serves one offer's detail view.
func MenuOffer(catalogRepo *catalog.Repository, visitSvc *visit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		v := middleware.VisitFromContext(ctx)

		visitSvc.CaptureTable(ctx, v, r.URL.Query().Get("t"))
		if err := visitSvc.ExpireStaleCart(ctx, v); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offer, err := catalogRepo.FindOfferBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOfferResponse(*offer))
	}
}
