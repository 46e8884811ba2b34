package gormrepo

import (
	"context"
	"time"

	"dayplan/internal/adapter/repo/gorm/model"
	"dayplan/internal/app/ports"

	"gorm.io/gorm"
)

type ConversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return ConversationRepo{db: db}
}

func (r ConversationRepo) Append(ctx context.Context, userID, role, content string) error {
	row := model.Message{
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	return getDBFromCtx(ctx, r.db).Create(&row).Error
}

func (r ConversationRepo) Recent(ctx context.Context, userID string, limit int) ([]ports.ConversationMessage, error) {
	var rows []model.Message
	query := getDBFromCtx(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	// Query newest-first for the LIMIT, return oldest-first.
	out := make([]ports.ConversationMessage, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = ports.ConversationMessage{
			Role:      row.Role,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}
