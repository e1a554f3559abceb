package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/trucksigns/truck-signs-api/app/cache"
)

// CacheTTLs controls how long cached id lists live.
type CacheTTLs struct {
	// List applies to every list endpoint.
	List time.Duration
	// Static applies to near-static lookups such as the Truck Sign category id.
	Static time.Duration
}

func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{List: 300 * time.Second, Static: time.Hour}
}

type CatalogRepository struct {
	db  *gorm.DB
	ids *cache.IDCache
	ttl CacheTTLs
}

func NewCatalogRepository(db *gorm.DB, ids *cache.IDCache, ttl CacheTTLs) *CatalogRepository {
	return &CatalogRepository{
		db:  db,
		ids: ids,
		ttl: ttl,
	}
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]Category, error) {
	ids, err := r.ids.Load(ctx, r.ids.Keys().Categories(), r.ttl.List, r.pluck(&Category{}))
	if err != nil {
		return nil, err
	}
	return findByIDs[Category](r.db.WithContext(ctx), ids)
}

func (r *CatalogRepository) ListLetteringItemCategories(ctx context.Context) ([]LetteringItemCategory, error) {
	ids, err := r.ids.Load(ctx, r.ids.Keys().LetteringItemCategories(), r.ttl.List, r.pluck(&LetteringItemCategory{}))
	if err != nil {
		return nil, err
	}
	return findByIDs[LetteringItemCategory](r.db.WithContext(ctx), ids)
}

func (r *CatalogRepository) ListProductColors(ctx context.Context) ([]ProductColor, error) {
	ids, err := r.ids.Load(ctx, r.ids.Keys().ProductColors(), r.ttl.List, r.pluck(&ProductColor{}))
	if err != nil {
		return nil, err
	}
	return findByIDs[ProductColor](r.db.WithContext(ctx), ids)
}

// ListProducts returns one page of the cached product id list together with
// the total number of products in it.
func (r *CatalogRepository) ListProducts(ctx context.Context, offset, limit int) ([]Product, int64, error) {
	ids, err := r.ids.Load(ctx, r.ids.Keys().Products(), r.ttl.List, r.pluck(&Product{}))
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(ids))
	start := min(offset, len(ids))
	end := min(start+limit, len(ids))

	products, err := findByIDs[Product](r.db.WithContext(ctx).Preload("Category"), ids[start:end])
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListProductsByCategory is not cached.
func (r *CatalogRepository) ListProductsByCategory(ctx context.Context, categoryID uint) ([]Product, error) {
	products := []Product{}
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListLogos returns the stock (not customer uploaded) products of the
// Truck Sign category. A missing category yields an empty list.
func (r *CatalogRepository) ListLogos(ctx context.Context) ([]Product, error) {
	categoryID, err := r.truckSignCategoryID(ctx)
	if errors.Is(err, ErrCategoryNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	logos := func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ? AND is_uploaded = ?", categoryID, false)
	}

	ids, err := r.ids.Load(ctx, r.ids.Keys().Logos(categoryID), r.ttl.List, func(ctx context.Context) ([]uint, error) {
		var ids []uint
		err := r.db.WithContext(ctx).Model(&Product{}).Scopes(logos).Order("id").Pluck("id", &ids).Error
		return ids, err
	})
	if err != nil {
		return nil, err
	}

	// Re-apply the filter so a product that moved since caching is not served.
	return findByIDs[Product](r.db.WithContext(ctx).Preload("Category").Scopes(logos), ids)
}

func (r *CatalogRepository) truckSignCategoryID(ctx context.Context) (uint, error) {
	ids, err := r.ids.Load(ctx, r.ids.Keys().TruckSignCategory(), r.ttl.Static, func(ctx context.Context) ([]uint, error) {
		category, err := r.GetCategoryByTitle(ctx, TruckSignCategory)
		if err != nil {
			return nil, err
		}
		return []uint{category.ID}, nil
	})
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrCategoryNotFound
	}
	return ids[0], nil
}

func (r *CatalogRepository) GetCategoryByTitle(ctx context.Context, title string) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *CatalogRepository) GetProductColor(ctx context.Context, id uint) (*ProductColor, error) {
	var color ProductColor
	if err := r.db.WithContext(ctx).First(&color, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductColorNotFound
		}
		return nil, err
	}
	return &color, nil
}

func (r *CatalogRepository) GetLetteringItemCategoryByTitle(ctx context.Context, title string) (*LetteringItemCategory, error) {
	var category LetteringItemCategory
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLetteringItemCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) GetProductVariation(ctx context.Context, id uint) (*ProductVariation, error) {
	var variation ProductVariation
	if err := PreloadVariation(r.db.WithContext(ctx), "").First(&variation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductVariationNotFound
		}
		return nil, err
	}
	return &variation, nil
}

// CreateUploadedProduct registers a customer supplied image as a product of
// the Truck Sign category.
func (r *CatalogRepository) CreateUploadedProduct(ctx context.Context, title, imageURL string) (*Product, error) {
	category, err := r.GetCategoryByTitle(ctx, TruckSignCategory)
	if err != nil {
		return nil, err
	}

	product := &Product{
		Title:       title,
		CategoryID:  category.ID,
		Category:    *category,
		IsUploaded:  true,
		Image:       imageURL,
		DetailImage: imageURL,
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// PreloadVariation loads everything needed to display or price a variation.
// prefix is the association path leading to the variation ("" or "Product.").
func PreloadVariation(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix + "Product.Category").
		Preload(prefix + "ProductColor").
		Preload(prefix+"LetteringItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("lettering_item_variations.id")
		}).
		Preload(prefix + "LetteringItems.LetteringItemCategory")
}

func (r *CatalogRepository) pluck(model any) cache.LoadFunc {
	return func(ctx context.Context) ([]uint, error) {
		var ids []uint
		err := r.db.WithContext(ctx).Model(model).Order("id").Pluck("id", &ids).Error
		return ids, err
	}
}

func findByIDs[T any](db *gorm.DB, ids []uint) ([]T, error) {
	rows := []T{}
	if len(ids) == 0 {
		return rows, nil
	}
	if err := db.Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
