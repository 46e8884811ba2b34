package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"dayplan/internal/adapter/repo/gorm/model"
	"dayplan/internal/app/ports"
	"dayplan/internal/domain/action"

	"gorm.io/gorm"
)

type PendingActionRepo struct {
	db *gorm.DB
}

func NewPendingActionRepo(db *gorm.DB) PendingActionRepo {
	return PendingActionRepo{db: db}
}

func (r PendingActionRepo) Insert(ctx context.Context, a action.PendingAction) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return err
	}
	row := model.PendingAction{
		ActionID:    a.ActionID,
		OwnerID:     a.OwnerID,
		Kind:        string(a.Kind),
		Payload:     payload,
		Description: a.Description,
		State:       string(a.State),
		CreatedAt:   a.CreatedAt,
		ExpiresAt:   a.ExpiresAt,
		ResolvedAt:  a.ResolvedAt,
	}
	if err := getDBFromCtx(ctx, r.db).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r PendingActionRepo) FindByID(ctx context.Context, ownerID, actionID string) (action.PendingAction, error) {
	var row model.PendingAction
	err := getDBFromCtx(ctx, r.db).
		Where("owner_id = ? AND action_id = ?", ownerID, actionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.PendingAction{}, ports.ErrNotFound
		}
		return action.PendingAction{}, err
	}
	return toDomain(row)
}

// CompareAndTransition is a single-row conditional update: the expected
// state is part of the WHERE clause, so concurrent resolvers for the same
// action id serialize on the row and exactly one wins.
func (r PendingActionRepo) CompareAndTransition(ctx context.Context, actionID string, from, to action.State, resolvedAt time.Time) (bool, error) {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.PendingAction{}).
		Where("action_id = ? AND state = ?", actionID, string(from)).
		Updates(map[string]any{
			"state":       string(to),
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r PendingActionRepo) FindPending(ctx context.Context, ownerID string) ([]action.PendingAction, error) {
	var rows []model.PendingAction
	err := getDBFromCtx(ctx, r.db).
		Where("owner_id = ? AND state = ?", ownerID, string(action.StatePending)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows)
}

func (r PendingActionRepo) FindPendingDueBefore(ctx context.Context, cutoff time.Time) ([]action.PendingAction, error) {
	var rows []model.PendingAction
	err := getDBFromCtx(ctx, r.db).
		Where("state = ? AND expires_at <= ?", string(action.StatePending), cutoff).
		Order("expires_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainSlice(rows)
}

func toDomain(row model.PendingAction) (action.PendingAction, error) {
	var payload action.Payload
	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			return action.PendingAction{}, err
		}
	}
	return action.PendingAction{
		ActionID:    row.ActionID,
		OwnerID:     row.OwnerID,
		Kind:        action.Kind(row.Kind),
		Payload:     payload,
		Description: row.Description,
		State:       action.State(row.State),
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
		ResolvedAt:  row.ResolvedAt,
	}, nil
}

func toDomainSlice(rows []model.PendingAction) ([]action.PendingAction, error) {
	out := make([]action.PendingAction, 0, len(rows))
	for _, row := range rows {
		a, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
