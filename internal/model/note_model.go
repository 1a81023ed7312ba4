package model

import (
	"time"

	"github.com/google/uuid"
)

// Note rows are hard deleted; note_versions follow through the cascade.
type Note struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:text;not null"`
	OwnerId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner     *User     `gorm:"foreignKey:OwnerId;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Note) TableName() string {
	return "notes"
}
