package models

import (
	"context"

	"gorm.io/gorm"

	"github.com/trucksigns/truck-signs-api/app/cache"
)

type CommentsRepository struct {
	db  *gorm.DB
	ids *cache.IDCache
	ttl CacheTTLs
}

func NewCommentsRepository(db *gorm.DB, ids *cache.IDCache, ttl CacheTTLs) *CommentsRepository {
	return &CommentsRepository{db: db, ids: ids, ttl: ttl}
}

func (r *CommentsRepository) ListVisible(ctx context.Context) ([]Comment, error) {
	visible := func(db *gorm.DB) *gorm.DB {
		return db.Where("visible = ?", true)
	}

	ids, err := r.ids.Load(ctx, r.ids.Keys().VisibleComments(), r.ttl.List, func(ctx context.Context) ([]uint, error) {
		var ids []uint
		err := r.db.WithContext(ctx).Model(&Comment{}).Scopes(visible).Order("id").Pluck("id", &ids).Error
		return ids, err
	})
	if err != nil {
		return nil, err
	}
	return findByIDs[Comment](r.db.WithContext(ctx).Scopes(visible), ids)
}

// Create stores the comment and drops the cached visible list.
func (r *CommentsRepository) Create(ctx context.Context, comment *Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	r.ids.Invalidate(ctx, r.ids.Keys().VisibleComments())
	return nil
}
