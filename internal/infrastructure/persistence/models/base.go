package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
)

// BaseModel holds the id and timestamp columns every table has.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// UserAggregateModel adds the optimistic-lock version and the owning user
// to BaseModel. Repositories filter every query on UserID.
type UserAggregateModel struct {
	BaseModel
	Version int    `gorm:"not null;default:1"`
	UserID  string `gorm:"type:varchar(128);not null;index"`
}

func (m *UserAggregateModel) storeRoot(root shared.UserAggregateRoot) {
	m.ID = root.ID
	m.CreatedAt = root.CreatedAt
	m.UpdatedAt = root.UpdatedAt
	m.Version = root.Version
	m.UserID = root.UserID
}

func (m *UserAggregateModel) loadRoot(root *shared.UserAggregateRoot) {
	root.ID = m.ID
	root.CreatedAt = m.CreatedAt
	root.UpdatedAt = m.UpdatedAt
	root.Version = m.Version
	root.UserID = m.UserID
}
