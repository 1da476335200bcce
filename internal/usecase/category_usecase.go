package usecase

import (
	"context"
	"errors"
	"strings"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
)

type CategoryUsecase struct {
	categories repo.CategoryRepository
}

func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *int64
	SortOrder   int
}

func (u *CategoryUsecase) List(ctx context.Context) ([]repo.CategoryWithCount, error) {
	cs, err := u.categories.ListActiveWithGoodsCount(ctx)
	if err != nil {
		return nil, ErrPersistence(err)
	}
	return cs, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CreateCategoryInput) (model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, ErrValidation("name required")
	}
	if len([]rune(name)) > 50 {
		return model.Category{}, ErrValidation("name too long")
	}

	// 名前の重複
	_, err := u.categories.FindByName(ctx, name)
	if err == nil {
		return model.Category{}, ErrConflict("category name already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, ErrPersistence(err)
	}

	if in.ParentID != nil {
		if _, err := u.categories.FindByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return model.Category{}, ErrValidation("parent category not found")
			}
			return model.Category{}, ErrPersistence(err)
		}
	}

	c, err := u.categories.Create(ctx, model.Category{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	})
	// 同時作成で一意制約に当たった場合
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Category{}, ErrConflict("category name already exists")
	}
	if err != nil {
		return model.Category{}, ErrPersistence(err)
	}
	return c, nil
}
