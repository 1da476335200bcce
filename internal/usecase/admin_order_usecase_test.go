package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"
	"salesapp/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminOrderFixture struct {
	tx      *TxManagerMock
	orders  *OrderRepoMock
	details *OrderDetailRepoMock
	inv     *InventoryRepoMock
	audit   *AuditRepoMock
	uc      *usecase.AdminOrderUsecase
}

func newAdminOrderFixture() adminOrderFixture {
	f := adminOrderFixture{
		orders:  new(OrderRepoMock),
		details: new(OrderDetailRepoMock),
		inv:     new(InventoryRepoMock),
		audit:   new(AuditRepoMock),
	}
	f.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:       f.orders,
		orderDetails: f.details,
		inventory:    f.inv,
		auditLogs:    f.audit,
	}}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.uc = usecase.NewAdminOrderUsecase(f.tx, fixedClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)})
	return f
}

// =====================
// List
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	f := newAdminOrderFixture()

	out, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Empty(t, out.Items)
	assertErrContains(t, err, "invalid page")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	f := newAdminOrderFixture()

	_, err := f.uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PAID"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_List_OK(t *testing.T) {
	f := newAdminOrderFixture()
	filter := repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "pending"}

	f.orders.On("ListAdmin", mock.Anything, filter).
		Return([]model.Order{{ID: "o-1", UserID: 7, Status: model.OrderStatusPending}}, int64(1), nil)
	f.details.On("ListByOrderID", mock.Anything, "o-1").
		Return([]model.OrderDetail{{OrderID: "o-1", GoodsID: 1, GoodsName: "Phone", Quantity: 2}}, nil)

	out, err := f.uc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "o-1", out.Items[0].ID)
	assert.Len(t, out.Items[0].Items, 1)
}

// =====================
// UpdateStatus
// =====================

func TestAdminOrderUsecase_UpdateStatus_CancelRestoresStock(t *testing.T) {
	f := newAdminOrderFixture()

	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusPending}, nil)
	f.details.On("ListByOrderID", mock.Anything, "o-1").Return([]model.OrderDetail{
		{GoodsID: 1, Quantity: 2},
		{GoodsID: 2, Quantity: 1},
	}, nil)
	f.inv.On("IncreaseStock", mock.Anything, int64(1), int64(2)).Return(nil)
	f.inv.On("IncreaseStock", mock.Anything, int64(2), int64(1)).Return(nil)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", model.OrderStatusCancelled).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == "o-1" &&
			l.ActorUserID == 100 &&
			l.BeforeJSON == `{"status":"pending"}` &&
			l.AfterJSON == `{"status":"cancelled"}`
	})).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: "cancelled"})
	require.NoError(t, err)

	f.inv.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_Ship(t *testing.T) {
	f := newAdminOrderFixture()

	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusPending}, nil)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", model.OrderStatusShipped).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	require.NoError(t, err)

	f.inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newAdminOrderFixture()
	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusShipped}, nil)

	err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	require.NoError(t, err)

	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_RejectsIllegalTransition(t *testing.T) {
	tests := []struct {
		from model.OrderStatus
		to   string
	}{
		{model.OrderStatusCancelled, "pending"},
		{model.OrderStatusCompleted, "cancelled"},
		{model.OrderStatusPending, "completed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+tt.to, func(t *testing.T) {
			f := newAdminOrderFixture()
			f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: tt.from}, nil)

			err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: tt.to})
			assert.True(t, usecase.IsKind(err, usecase.KindValidation))
			f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatusValue(t *testing.T) {
	f := newAdminOrderFixture()

	err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assertErrContains(t, err, "invalid status")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	f := newAdminOrderFixture()
	f.orders.On("FindByID", mock.Anything, "missing").Return(model.Order{}, repo.ErrNotFound)

	err := f.uc.UpdateStatus(context.Background(), 100, "missing", usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assert.True(t, usecase.IsKind(err, usecase.KindNotFound))
}

func TestAdminOrderUsecase_UpdateStatus_AuditFailureIsPersistence(t *testing.T) {
	f := newAdminOrderFixture()
	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", Status: model.OrderStatusShipped}, nil)
	f.orders.On("UpdateStatus", mock.Anything, "o-1", model.OrderStatusCompleted).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	err := f.uc.UpdateStatus(context.Background(), 100, "o-1", usecase.AdminUpdateOrderStatusInput{Status: "completed"})
	assert.True(t, usecase.IsKind(err, usecase.KindPersistence))
}

func TestParseDateTimeParam(t *testing.T) {
	got, ok := usecase.ParseDateTimeParam("2026-03-01", shanghai)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, shanghai)))

	got, ok = usecase.ParseDateTimeParam("2026-03-01T10:00:00Z", shanghai)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	_, ok = usecase.ParseDateTimeParam("yesterday", shanghai)
	assert.False(t, ok)
}
