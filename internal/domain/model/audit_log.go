package model

import "time"

// 在庫更新、注文ステータス更新、ユーザー作成など。
type AuditAction string

const (
	//在庫を設定した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//管理者がユーザーを追加した操作。
	AuditActionCreateUser AuditAction = "CREATE_USER"
)

func ParseAuditAction(s string) (AuditAction, bool) {
	switch a := AuditAction(s); a {
	case AuditActionUpdateStock, AuditActionUpdateOrderStatus, AuditActionCreateUser:
		return a, true
	}
	return "", false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceGoods AuditResourceType = "goods"
	AuditResourceOrder AuditResourceType = "order"
	AuditResourceUser  AuditResourceType = "user"
)

func ParseAuditResourceType(s string) (AuditResourceType, bool) {
	switch r := AuditResourceType(s); r {
	case AuditResourceGoods, AuditResourceOrder, AuditResourceUser:
		return r, true
	}
	return "", false
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//注文IDはUUIDなので文字列で持つ
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
