package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dayplan/internal/adapter/repo/gorm/model"
	"dayplan/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return UserRepo{db: db}
}

func (r UserRepo) Create(ctx context.Context, user ports.UserRecord) error {
	row := model.User{
		UserID:    user.UserID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
	if err := getDBFromCtx(ctx, r.db).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrConflict
		}
		return err
	}
	return nil
}

func (r UserRepo) GetByID(ctx context.Context, userID string) (ports.UserRecord, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r UserRepo) GetByEmail(ctx context.Context, email string) (ports.UserRecord, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r UserRepo) findOne(ctx context.Context, query string, arg any) (ports.UserRecord, error) {
	var row model.User
	if err := getDBFromCtx(ctx, r.db).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserRecord{}, ports.ErrNotFound
		}
		return ports.UserRecord{}, err
	}
	return ports.UserRecord{
		UserID:    row.UserID,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
	}, nil
}

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return ProfileRepo{db: db}
}

func (r ProfileRepo) Get(ctx context.Context, userID string) (ports.ProfileRecord, error) {
	var row model.UserProfile
	if err := getDBFromCtx(ctx, r.db).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ProfileRecord{}, ports.ErrNotFound
		}
		return ports.ProfileRecord{}, err
	}
	var goals []string
	if len(row.Goals) > 0 {
		if err := json.Unmarshal(row.Goals, &goals); err != nil {
			return ports.ProfileRecord{}, err
		}
	}
	return ports.ProfileRecord{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Timezone:    row.Timezone,
		Goals:       goals,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (r ProfileRepo) Save(ctx context.Context, profile ports.ProfileRecord) error {
	goals, err := json.Marshal(profile.Goals)
	if err != nil {
		return err
	}
	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	row := model.UserProfile{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		Timezone:    profile.Timezone,
		Goals:       goals,
		UpdatedAt:   updatedAt,
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "timezone", "goals", "updated_at"}),
		}).
		Create(&row).Error
}
