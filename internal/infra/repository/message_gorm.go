package repository

import (
	"context"
	"strings"
	"time"

	"salesapp/internal/domain/model"
	repo "salesapp/internal/repository"

	"gorm.io/gorm"
)

type MessageGormRepository struct {
	db *gorm.DB
}

func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

func (r *MessageGormRepository) Create(ctx context.Context, m model.Message) (model.Message, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.Message{}, err
	}
	return m, nil
}

func (r *MessageGormRepository) FindByID(ctx context.Context, id int64) (model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return model.Message{}, translateErr(err)
	}
	return m, nil
}

func (r *MessageGormRepository) List(ctx context.Context, f repo.MessageListFilter) ([]repo.MessageWithReplier, int64, error) {
	page, limit := normalizePage(f.Page, f.Limit, 20, 100)

	q := r.db.WithContext(ctx).Table("messages AS m").
		Joins("LEFT JOIN users AS u ON u.id = m.reply_user_id")
	if f.Status != "" {
		q = q.Where("m.status = ?", f.Status)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("m.customer_name ILIKE ? OR m.content ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []repo.MessageWithReplier{}, 0, err
	}

	var rows []repo.MessageWithReplier
	err := q.Select("m.*, COALESCE(u.real_name, '') AS reply_user_name").
		Order("m.created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return []repo.MessageWithReplier{}, 0, err
	}
	return rows, total, nil
}

func (r *MessageGormRepository) Reply(ctx context.Context, id int64, content string, replyUserID int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.MessageStatusReplied,
		"reply_content": content,
		"reply_user_id": replyUserID,
		"replied_at":    at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MessageGormRepository) UpdateStatus(ctx context.Context, id int64, status model.MessageStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MessageGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Message{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MessageGormRepository) Stats(ctx context.Context, dayStart, dayEnd time.Time) (repo.MessageStats, error) {
	var st repo.MessageStats
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select(
			"COUNT(*) FILTER (WHERE status = ?) AS unread, COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE created_at >= ? AND created_at < ?) AS today",
			model.MessageStatusUnread, dayStart, dayEnd,
		).
		Scan(&st).Error
	if err != nil {
		return repo.MessageStats{}, err
	}
	return st, nil
}
