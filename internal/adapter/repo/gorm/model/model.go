package model

import "time"

type PendingAction struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ActionID    string     `gorm:"column:action_id;uniqueIndex"`
	OwnerID     string     `gorm:"column:owner_id;index"`
	Kind        string     `gorm:"column:kind"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Description string     `gorm:"column:description"`
	State       string     `gorm:"column:state;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	ExpiresAt   time.Time  `gorm:"column:expires_at;index"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (PendingAction) TableName() string { return "pending_actions" }

type Message struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;index"`
	Role      string    `gorm:"column:role"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (Message) TableName() string { return "messages" }

type User struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;uniqueIndex"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "users" }

type UserProfile struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      string    `gorm:"column:user_id;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name"`
	Timezone    string    `gorm:"column:timezone"`
	Goals       []byte    `gorm:"column:goals;type:jsonb"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

type CalendarConnection struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID    string    `gorm:"column:owner_id;uniqueIndex"`
	SealedBlob []byte    `gorm:"column:sealed_blob"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (CalendarConnection) TableName() string { return "calendar_connections" }
