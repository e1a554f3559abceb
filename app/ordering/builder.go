package ordering

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/trucksigns/truck-signs-api/models"
)

// ColorPolicy decides what happens when the requested color cannot be used.
type ColorPolicy int

const (
	// PermissiveColor leaves the color unset when the id is missing,
	// unparsable or unknown.
	PermissiveColor ColorPolicy = iota
	// StrictColor rejects unparsable ids and unknown colors.
	StrictColor
)

func (p ColorPolicy) String() string {
	if p == StrictColor {
		return "strict"
	}
	return "permissive"
}

// LetteringRequest is one line of custom text under a named lettering category.
type LetteringRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// VariationRequest describes the variation a buyer configured.
type VariationRequest struct {
	ProductID uint
	// ColorID is the textual color id as submitted; empty means no color.
	ColorID   string
	Lettering []LetteringRequest
}

// CatalogLookup resolves the catalog entities a variation refers to.
type CatalogLookup interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	GetProductColor(ctx context.Context, id uint) (*models.ProductColor, error)
	GetLetteringItemCategoryByTitle(ctx context.Context, title string) (*models.LetteringItemCategory, error)
}

// Builder assembles an unsaved ProductVariation from a VariationRequest.
type Builder struct {
	catalog     CatalogLookup
	colorPolicy ColorPolicy
}

func NewBuilder(catalog CatalogLookup, colorPolicy ColorPolicy) *Builder {
	return &Builder{catalog: catalog, colorPolicy: colorPolicy}
}

// Build resolves every reference in req. Lettering lines whose text is blank
// are dropped; the others keep their text verbatim and their request order.
func (b *Builder) Build(ctx context.Context, req VariationRequest) (*models.ProductVariation, error) {
	product, err := b.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	color, err := b.resolveColor(ctx, req.ColorID)
	if err != nil {
		return nil, err
	}

	items := make([]models.LetteringItemVariation, 0, len(req.Lettering))
	for i, line := range req.Lettering {
		if strings.TrimSpace(line.Text) == "" {
			continue
		}
		if strings.TrimSpace(line.Title) == "" {
			return nil, models.Invalid("lettering_items[%d]: title is required", i)
		}

		category, err := b.catalog.GetLetteringItemCategoryByTitle(ctx, line.Title)
		if err != nil {
			return nil, err
		}
		items = append(items, models.LetteringItemVariation{
			LetteringItemCategoryID: category.ID,
			LetteringItemCategory:   *category,
			Lettering:               line.Text,
		})
	}

	if maxItems := product.Category.MaxAmountOfLetteringItems; maxItems > 0 && len(items) > maxItems {
		return nil, models.Invalid("%s products allow at most %d lettering items, got %d",
			product.Category.Title, maxItems, len(items))
	}

	amount := 1
	variation := &models.ProductVariation{
		ProductID:      product.ID,
		Product:        *product,
		ProductColor:   color,
		Amount:         &amount,
		LetteringItems: items,
	}
	if color != nil {
		variation.ProductColorID = &color.ID
	}
	return variation, nil
}

func (b *Builder) resolveColor(ctx context.Context, raw string) (*models.ProductColor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		if b.colorPolicy == StrictColor {
			return nil, models.Invalid("product_color_id %q is not a valid id", raw)
		}
		return nil, nil
	}

	color, err := b.catalog.GetProductColor(ctx, uint(id))
	if errors.Is(err, models.ErrNotFound) && b.colorPolicy == PermissiveColor {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return color, nil
}
