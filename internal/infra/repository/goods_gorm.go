package repository

import (
	"context"
	"strings"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"gorm.io/gorm"
)

type GoodsGormRepository struct {
	db *gorm.DB
}

// DI
func NewGoodsGormRepository(db *gorm.DB) *GoodsGormRepository {
	return &GoodsGormRepository{db: db}
}

// 検索/種類/ページング付きで返す。
func (r *GoodsGormRepository) List(ctx context.Context, q repo.GoodsListQuery) ([]repo.GoodsWithCategory, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit, 20, 100)

	tx := r.db.WithContext(ctx).Table("goods AS g").
		Joins("LEFT JOIN categories AS c ON c.id = g.category_id")

	if q.ActiveOnly {
		tx = tx.Where("g.is_active = ?", true)
	}
	// q nameを対象
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("g.name ILIKE ?", "%"+s+"%")
	}
	if q.CategoryID != nil {
		tx = tx.Where("g.category_id = ?", *q.CategoryID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []repo.GoodsWithCategory{}, 0, err
	}

	var rows []repo.GoodsWithCategory
	err := tx.Select("g.*, c.name AS category_name").
		Order("g.created_at desc").Order("g.id desc").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return []repo.GoodsWithCategory{}, 0, err
	}
	return rows, total, nil
}

// IDで商品を取得
func (r *GoodsGormRepository) FindByID(ctx context.Context, id int64) (model.Goods, error) {
	var g model.Goods
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return model.Goods{}, translateErr(err)
	}
	return g, nil
}

// 商品の作成
func (r *GoodsGormRepository) Create(ctx context.Context, g model.Goods) (model.Goods, error) {
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return model.Goods{}, err
	}
	return g, nil
}

// 商品の更新（stockは触らない）
func (r *GoodsGormRepository) Update(ctx context.Context, g model.Goods) error {
	res := r.db.WithContext(ctx).Model(&model.Goods{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
		"name":        g.Name,
		"category_id": g.CategoryID,
		"description": g.Description,
		"price":       g.Price,
		"is_active":   g.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
