package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	idGen IDGenerator
	clock Clock
}

func NewOrderUsecase(tx repo.TransactionManager, idGen IDGenerator, clock Clock) *OrderUsecase {
	return &OrderUsecase{tx: tx, idGen: idGen, clock: clock}
}

type OrderLineInput struct {
	GoodsID  int64 `json:"goods_id"`
	Quantity int64 `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []OrderLineInput
	ShippingAddress string
	ContactPhone    string
	Remark          string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	GoodsID   int64           `json:"goods_id"`
	GoodsName string          `json:"goods_name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID              string            `json:"order_id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	ShippingAddress string            `json:"shipping_address"`
	ContactPhone    string            `json:"contact_phone"`
	Remark          string            `json:"remark"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文確定。在庫チェック〜減算〜注文作成までを1トランザクションで行う
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized()
	}
	lines, err := mergeOrderLines(in.Items)
	if err != nil {
		return OrderOutput{}, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, ErrValidation("invalid idempotency_key")
	}
	if len(in.ShippingAddress) > 255 {
		return OrderOutput{}, ErrValidation("shipping_address too long")
	}
	if len(in.ContactPhone) > 32 {
		return OrderOutput{}, ErrValidation("contact_phone too long")
	}
	if len(in.Remark) > 500 {
		return OrderOutput{}, ErrValidation("remark too long")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return ErrPersistence(err)
			}
			if found {
				details, err := r.OrderDetails().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return ErrPersistence(err)
				}
				out = toOrderOutput(existing, details)
				return nil
			}
		}

		details := make([]model.OrderDetail, 0, len(lines))
		total := decimal.Zero

		for _, line := range lines {
			g, err := r.Goods().FindByID(ctx, line.GoodsID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !g.IsActive) {
				return ErrNotFound(fmt.Sprintf("goods not found: id=%d", line.GoodsID))
			}
			if err != nil {
				return ErrPersistence(err)
			}

			// 先に見えている在庫で判定（名前と在庫をメッセージに出す）
			if g.Stock < line.Quantity {
				return ErrInsufficientStock(g.Name, g.Stock)
			}

			// 条件付き減算。同時注文に負けたらここでfalse
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, g.ID, line.Quantity)
			if err != nil {
				return ErrPersistence(err)
			}
			if !ok {
				return ErrInsufficientStock(g.Name, g.Stock)
			}

			subtotal := g.Price.Mul(decimal.NewFromInt(line.Quantity))
			total = total.Add(subtotal)

			//スナップショット
			details = append(details, model.OrderDetail{
				GoodsID:   g.ID,
				GoodsName: g.Name,
				Price:     g.Price,
				Quantity:  line.Quantity,
				Subtotal:  subtotal,
			})
		}

		// 注文作成
		now := u.clock.Now()
		order := model.Order{
			ID:              u.idGen.NewID(),
			UserID:          userID,
			TotalAmount:     total,
			Status:          model.OrderStatusPending,
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			ContactPhone:    strings.TrimSpace(in.ContactPhone),
			Remark:          strings.TrimSpace(in.Remark),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrConflict("idempotency conflict")
			}
			return ErrPersistence(err)
		}

		//注文明細一括作成
		if err := r.OrderDetails().CreateBulk(ctx, order.ID, details); err != nil {
			return ErrPersistence(err)
		}

		out = toOrderOutput(order, details)
		return nil
	})

	if err != nil {
		return OrderOutput{}, asUsecaseError(err)
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, ErrUnauthorized()
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	out := OrderListOutput{Page: page, Limit: limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
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

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, ErrUnauthorized()
	}
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
		// 他人の注文は存在しない扱い
		if o.UserID != userID {
			return ErrNotFound("not found")
		}

		details, err := r.OrderDetails().ListByOrderID(ctx, o.ID)
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

// 入力チェックと同一商品の合算。goods_id順に並べてロック順を揃える
func mergeOrderLines(items []OrderLineInput) ([]OrderLineInput, error) {
	if len(items) == 0 {
		return nil, ErrValidation("items required")
	}

	qty := make(map[int64]int64, len(items))
	for _, it := range items {
		if it.GoodsID <= 0 {
			return nil, ErrValidation("invalid goods_id")
		}
		if it.Quantity <= 0 {
			return nil, ErrValidation("quantity must be > 0")
		}
		qty[it.GoodsID] += it.Quantity
	}

	lines := make([]OrderLineInput, 0, len(qty))
	for id, q := range qty {
		lines = append(lines, OrderLineInput{GoodsID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].GoodsID < lines[j].GoodsID })
	return lines, nil
}

func toOrderOutput(o model.Order, details []model.OrderDetail) OrderOutput {
	items := make([]OrderItemOutput, 0, len(details))
	for _, d := range details {
		items = append(items, OrderItemOutput{
			GoodsID:   d.GoodsID,
			GoodsName: d.GoodsName,
			Price:     d.Price,
			Quantity:  d.Quantity,
			Subtotal:  d.Subtotal,
		})
	}
	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		ContactPhone:    o.ContactPhone,
		Remark:          o.Remark,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}

// Tx自体の失敗（commit失敗など）はPERSISTENCEにそろえる
func asUsecaseError(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return ErrPersistence(err)
}
