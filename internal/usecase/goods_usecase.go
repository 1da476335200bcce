package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"github.com/shopspring/decimal"
)

type GoodsUsecase struct {
	goodsRepo    repo.GoodsRepository
	categoryRepo repo.CategoryRepository
	tx           repo.TransactionManager
	clock        Clock
}

// DI
func NewGoodsUsecase(
	goodsRepo repo.GoodsRepository,
	categoryRepo repo.CategoryRepository,
	tx repo.TransactionManager,
	clock Clock,
) *GoodsUsecase {
	return &GoodsUsecase{
		goodsRepo:    goodsRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		clock:        clock,
	}
}

// GET /goods の入力
type ListGoodsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	ActiveOnly bool
}

type GoodsListOutput struct {
	Items []repo.GoodsWithCategory `json:"items"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

func (u *GoodsUsecase) List(ctx context.Context, in ListGoodsInput) (GoodsListOutput, error) {
	if in.Page < 1 {
		return GoodsListOutput{}, ErrValidation("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return GoodsListOutput{}, ErrValidation("invalid limit")
	}
	if len(in.Q) > 100 {
		return GoodsListOutput{}, ErrValidation("q too long")
	}

	items, total, err := u.goodsRepo.List(ctx, repo.GoodsListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		ActiveOnly: in.ActiveOnly,
	})
	if err != nil {
		return GoodsListOutput{}, ErrPersistence(err)
	}

	return GoodsListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *GoodsUsecase) Detail(ctx context.Context, goodsID int64) (model.Goods, error) {
	if goodsID <= 0 {
		return model.Goods{}, ErrValidation("invalid goods id")
	}

	g, err := u.goodsRepo.FindByID(ctx, goodsID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Goods{}, ErrNotFound("not found")
	}
	if err != nil {
		return model.Goods{}, ErrPersistence(err)
	}
	return g, nil
}

type AdminGoodsInput struct {
	Name        string
	CategoryID  int64
	Price       decimal.Decimal
	Stock       int64
	Description string
	IsActive    bool
}

func (u *GoodsUsecase) validateGoodsInput(ctx context.Context, in AdminGoodsInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrValidation("name required")
	}
	if len([]rune(name)) > 100 {
		return ErrValidation("name too long")
	}
	if in.Price.IsNegative() {
		return ErrValidation("price must be >= 0")
	}
	if in.CategoryID <= 0 {
		return ErrValidation("category_id required")
	}

	// 種類が存在して有効か
	c, err := u.categoryRepo.FindByID(ctx, in.CategoryID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !c.IsActive) {
		return ErrValidation("category not found")
	}
	if err != nil {
		return ErrPersistence(err)
	}
	return nil
}

func (u *GoodsUsecase) AdminCreate(ctx context.Context, adminUserID int64, in AdminGoodsInput) (model.Goods, error) {
	if adminUserID <= 0 {
		return model.Goods{}, ErrUnauthorized()
	}
	if in.Stock < 0 {
		return model.Goods{}, ErrValidation("stock must be >= 0")
	}
	if err := u.validateGoodsInput(ctx, in); err != nil {
		return model.Goods{}, err
	}

	now := u.clock.Now()
	g, err := u.goodsRepo.Create(ctx, model.Goods{
		Name:        strings.TrimSpace(in.Name),
		CategoryID:  in.CategoryID,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		Description: in.Description,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return model.Goods{}, ErrPersistence(err)
	}
	return g, nil
}

// 在庫はここでは変えない（AdminUpdateStockを使う）
func (u *GoodsUsecase) AdminUpdate(ctx context.Context, adminUserID int64, goodsID int64, in AdminGoodsInput) error {
	if adminUserID <= 0 {
		return ErrUnauthorized()
	}
	if goodsID <= 0 {
		return ErrValidation("invalid goods id")
	}
	if err := u.validateGoodsInput(ctx, in); err != nil {
		return err
	}

	err := u.goodsRepo.Update(ctx, model.Goods{
		ID:          goodsID,
		Name:        strings.TrimSpace(in.Name),
		CategoryID:  in.CategoryID,
		Price:       in.Price.Round(2),
		Description: in.Description,
		IsActive:    in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound("not found")
	}
	if err != nil {
		return ErrPersistence(err)
	}
	return nil
}

// 在庫の絶対値設定。調整履歴と監査ログを同じTxで残す
func (u *GoodsUsecase) AdminUpdateStock(ctx context.Context, adminUserID int64, goodsID int64, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return ErrUnauthorized()
	}
	if goodsID <= 0 {
		return ErrValidation("invalid goods id")
	}
	if newStock < 0 {
		return ErrValidation("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrValidation("reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		g, err := r.Goods().FindByID(ctx, goodsID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound("not found")
		}
		if err != nil {
			return ErrPersistence(err)
		}

		if err := r.Inventory().SetStock(ctx, goodsID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound("not found")
			}
			return ErrPersistence(err)
		}

		now := u.clock.Now()

		//履歴を作成（差分）
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			GoodsID:     goodsID,
			AdminUserID: adminUserID,
			Delta:       newStock - g.Stock,
			Reason:      reason,
			CreatedAt:   now,
		}); err != nil {
			return ErrPersistence(err)
		}

		//監査ログを作成（在庫更新）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceGoods,
			ResourceID:   fmt.Sprintf("%d", goodsID),
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, g.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    now,
		}); err != nil {
			return ErrPersistence(err)
		}
		return nil
	})
	if err != nil {
		return asUsecaseError(err)
	}
	return nil
}
