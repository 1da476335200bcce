package repository

import (
	"context"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	var cs []model.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc").Order("id asc").
		Find(&cs).Error
	if err != nil {
		return []model.Category{}, err
	}
	return cs, nil
}

// 公開中の商品数もあわせて返す
func (r *CategoryGormRepository) ListActiveWithGoodsCount(ctx context.Context) ([]repo.CategoryWithCount, error) {
	var rows []repo.CategoryWithCount
	err := r.db.WithContext(ctx).
		Table("categories AS c").
		Select("c.*, COUNT(g.id) AS goods_count").
		Joins("LEFT JOIN goods AS g ON g.category_id = c.id AND g.is_active = ?", true).
		Where("c.is_active = ?", true).
		Group("c.id").
		Order("c.sort_order asc").Order("c.created_at asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.CategoryWithCount{}, err
	}
	return rows, nil
}

func (r *CategoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) FindByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}

func (r *CategoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, translateErr(err)
	}
	return c, nil
}
