package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
	pkgerrors "github.com/layali-lounge/qrmenu-backend/pkg/errors"
)

// ListFilters describe the filter knobs for the menu browse endpoint. The
// zero value lists every active product.
type ListFilters struct {
	CategorySlug string `json:"category,omitempty"`
	Query        string `json:"q,omitempty"`
	FeaturedOnly bool   `json:"featured,omitempty"`
}

// Repository is the read-only catalog surface: everything the menu and the
// pricer need, nothing that mutates. Menu authoring happens out of band.
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

// ActiveCategories returns the visible categories in display order.
func (r *Repository) ActiveCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListProducts returns active products matching the filters, featured items
// first. The text query matches name or description, case-insensitively.
func (r *Repository) ListProducts(ctx context.Context, filters ListFilters) ([]models.Product, error) {
	// Hiding a category hides its products, with or without a slug filter.
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ?", true).
		Where("categories.is_active = ?", true)

	if slug := strings.TrimSpace(filters.CategorySlug); slug != "" {
		q = q.Where("categories.slug = ?", slug)
	}
	if term := strings.TrimSpace(filters.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", pattern, pattern)
	}
	if filters.FeaturedOnly {
		q = q.Where("products.is_featured = ?", true)
	}

	var products []models.Product
	if err := q.Preload("Category").
		Order("products.is_featured DESC, products.name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ActiveOffers returns the visible offers in display order.
func (r *Repository) ActiveOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, title ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// FindProductBySlug loads one active product for the detail view.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindOfferBySlug loads one active offer for the detail view.
func (r *Repository) FindOfferBySlug(ctx context.Context, slug string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FetchActiveProducts batch-loads active products keyed by id. Unknown and
// inactive ids are simply absent from the result.
func (r *Repository) FetchActiveProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// FetchActiveOffers batch-loads active offers keyed by id.
func (r *Repository) FetchActiveOffers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Offer, error) {
	out := make(map[uuid.UUID]models.Offer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var offers []models.Offer
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&offers).Error; err != nil {
		return nil, err
	}
	for _, o := range offers {
		out[o.ID] = o
	}
	return out, nil
}
