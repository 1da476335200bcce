package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, clock: clock}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, ErrValidation("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, ErrValidation("invalid limit")
	}
	if f.Status != "" {
		if _, ok := model.ParseOrderStatus(f.Status); !ok {
			return OrderListOutput{}, ErrValidation("invalid status")
		}
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return OrderListOutput{}, ErrValidation("from must be before to")
	}

	out := OrderListOutput{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return ErrPersistence(err)
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			details, err := r.OrderDetails().ListByOrderID(ctx, o.ID)
			if err != nil {
				return ErrPersistence(err)
			}
			out.Items = append(out.Items, toOrderOutput(o, details))
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, asUsecaseError(err)
	}
	return out, nil
}

func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID string) (OrderOutput, error) {
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, ErrValidation("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound("not found")
		}
		if err != nil {
			return ErrPersistence(err)
		}
		details, err := r.OrderDetails().ListByOrderID(ctx, orderID)
		if err != nil {
			return ErrPersistence(err)
		}
		out = toOrderOutput(o, details)
		return nil
	})
	if err != nil {
		return OrderOutput{}, asUsecaseError(err)
	}
	return out, nil
}

// ステータス更新（cancelledなら在庫戻し)
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID string, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return ErrUnauthorized()
	}
	if strings.TrimSpace(orderID) == "" {
		return ErrValidation("invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(strings.TrimSpace(in.Status))
	if !ok {
		return ErrValidation("invalid status")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound("not found")
		}
		if err != nil {
			return ErrPersistence(err)
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		if !o.Status.CanTransitionTo(newStatus) {
			return ErrValidation("cannot change " + string(o.Status) + " order to " + string(newStatus))
		}

		// cancelledへ変えるときだけ在庫戻し
		if newStatus == model.OrderStatusCancelled {
			details, err := r.OrderDetails().ListByOrderID(ctx, orderID)
			if err != nil {
				return ErrPersistence(err)
			}
			for _, d := range details {
				if err := r.Inventory().IncreaseStock(ctx, d.GoodsID, d.Quantity); err != nil {
					return ErrPersistence(err)
				}
			}
		}

		// ステータス更新
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNotFound("not found")
			}
			return ErrPersistence(err)
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    u.clock.Now(),
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

// 期間パラメータ。日付だけ（2006-01-02）も受け付ける
func ParseDateTimeParam(s string, loc *time.Location) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return &t, true
	}
	return nil, false
}
